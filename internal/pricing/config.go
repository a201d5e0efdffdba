package pricing

import (
	"time"

	"github.com/guttosm/farepath-service/internal/domain/model"
)

// Epsilon is the tolerance used when comparing NUC amounts.
const Epsilon = 0.001

// FactoriesConfig holds the limits shared by every factory of a search.
type FactoriesConfig struct {
	// MaxNbrCombMsgThreshold is the number of fare path combinations after which an abort is
	// reported as MAX_NUMBER_COMBOS_EXCEEDED instead of a plain timeout.
	MaxNbrCombMsgThreshold int
	// MultiPaxShortCktTimeout stops non-primary passenger searches early in multi-pax requests.
	MultiPaxShortCktTimeout time.Duration
	// ShortCktTimeout must elapse before a statistically slow factory is shut down.
	ShortCktTimeout time.Duration
	// ShortCktShutdownFPFsTime is measured from search start; once reached with a pushed back
	// valid fare path, all factories are shut down. Zero disables it.
	ShortCktShutdownFPFsTime time.Duration
	// ShortCktKeepValidFPsTime is measured from search start; once reached, a factory that
	// pushes back a plus-up candidate keeps only its valid items and stops. Zero disables it.
	ShortCktKeepValidFPsTime time.Duration
	// ShortCktCombCount is the floor of combinations tried before the statistical check applies.
	ShortCktCombCount int
	// ShortCktStdDevMultiplier is the number of standard deviations above the mean that marks
	// a factory as an outlier.
	ShortCktStdDevMultiplier float64
	PlusUpPushBackMax        int
	PlusUpPushBackThreshold  int
	// MaxSearchNextLevelFarePath bounds the candidates generated per extension; negative is unlimited.
	MaxSearchNextLevelFarePath int
	// AbortCheckInterval is how many loop iterations pass between cancellation polls.
	AbortCheckInterval int
	// MaxFailedFarePaths raises TooManyCombinations once exceeded; zero is unlimited.
	MaxFailedFarePaths int
}

// DefaultFactoriesConfig returns the production defaults.
func DefaultFactoriesConfig() FactoriesConfig {
	return FactoriesConfig{
		MaxNbrCombMsgThreshold:     50000,
		MultiPaxShortCktTimeout:    3 * time.Second,
		ShortCktTimeout:            2 * time.Second,
		ShortCktShutdownFPFsTime:   0,
		ShortCktKeepValidFPsTime:   0,
		ShortCktCombCount:          1000,
		ShortCktStdDevMultiplier:   3,
		PlusUpPushBackMax:          100,
		PlusUpPushBackThreshold:    10,
		MaxSearchNextLevelFarePath: -1,
		AbortCheckInterval:         16,
		MaxFailedFarePaths:         0,
	}
}

// ConfigFromSettings converts stored search settings, keeping defaults for unset values.
func ConfigFromSettings(s model.SearchSettings) FactoriesConfig {
	return DefaultFactoriesConfig().Apply(s)
}

// Apply returns c with every set value of s applied over it.
func (c FactoriesConfig) Apply(s model.SearchSettings) FactoriesConfig {
	cfg := c
	if s.MaxNbrCombMsgThreshold > 0 {
		cfg.MaxNbrCombMsgThreshold = s.MaxNbrCombMsgThreshold
	}
	if s.MultiPaxShortCktTimeoutMs > 0 {
		cfg.MultiPaxShortCktTimeout = time.Duration(s.MultiPaxShortCktTimeoutMs) * time.Millisecond
	}
	if s.ShortCktTimeoutMs > 0 {
		cfg.ShortCktTimeout = time.Duration(s.ShortCktTimeoutMs) * time.Millisecond
	}
	if s.ShortCktShutdownFPFsTimeMs > 0 {
		cfg.ShortCktShutdownFPFsTime = time.Duration(s.ShortCktShutdownFPFsTimeMs) * time.Millisecond
	}
	if s.ShortCktKeepValidFPsTimeMs > 0 {
		cfg.ShortCktKeepValidFPsTime = time.Duration(s.ShortCktKeepValidFPsTimeMs) * time.Millisecond
	}
	if s.ShortCktCombCount > 0 {
		cfg.ShortCktCombCount = s.ShortCktCombCount
	}
	if s.ShortCktStdDevMultiplier > 0 {
		cfg.ShortCktStdDevMultiplier = s.ShortCktStdDevMultiplier
	}
	if s.PlusUpPushBackMax > 0 {
		cfg.PlusUpPushBackMax = s.PlusUpPushBackMax
	}
	if s.PlusUpPushBackThreshold != 0 {
		cfg.PlusUpPushBackThreshold = s.PlusUpPushBackThreshold
	}
	if s.MaxSearchNextLevelFarePath != 0 {
		cfg.MaxSearchNextLevelFarePath = s.MaxSearchNextLevelFarePath
	}
	if s.AbortCheckInterval > 0 {
		cfg.AbortCheckInterval = s.AbortCheckInterval
	}
	if s.MaxFailedFarePaths > 0 {
		cfg.MaxFailedFarePaths = s.MaxFailedFarePaths
	}
	return cfg
}

// Settings converts the config back to its stored form.
func (c FactoriesConfig) Settings() model.SearchSettings {
	return model.SearchSettings{
		MaxNbrCombMsgThreshold:     c.MaxNbrCombMsgThreshold,
		MultiPaxShortCktTimeoutMs:  c.MultiPaxShortCktTimeout.Milliseconds(),
		ShortCktTimeoutMs:          c.ShortCktTimeout.Milliseconds(),
		ShortCktShutdownFPFsTimeMs: c.ShortCktShutdownFPFsTime.Milliseconds(),
		ShortCktKeepValidFPsTimeMs: c.ShortCktKeepValidFPsTime.Milliseconds(),
		ShortCktCombCount:          c.ShortCktCombCount,
		ShortCktStdDevMultiplier:   c.ShortCktStdDevMultiplier,
		PlusUpPushBackMax:          c.PlusUpPushBackMax,
		PlusUpPushBackThreshold:    c.PlusUpPushBackThreshold,
		MaxSearchNextLevelFarePath: c.MaxSearchNextLevelFarePath,
		AbortCheckInterval:         c.AbortCheckInterval,
		MaxFailedFarePaths:         c.MaxFailedFarePaths,
	}
}
