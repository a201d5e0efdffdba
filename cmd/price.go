package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/app"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/domain/model"
	"github.com/guttosm/farepath-service/internal/logger"
	"github.com/guttosm/farepath-service/internal/service"
)

type priceOptions struct {
	file   string
	diag   int
	count  int
	asJSON bool
}

func priceCmd() *cobra.Command {
	opts := &priceOptions{}

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price one request file without starting the server",
		Long: `Runs a single pricing transaction over a YAML or JSON request file and
prints the ranked solutions.

Examples:
  farepath price --file req.yaml
  farepath price --file req.json --count 3
  farepath price --file req.yaml --diag 671`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrice(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "request file (.yaml, .yml or .json)")
	cmd.Flags().IntVar(&opts.diag, "diag", 0, "diagnostic code to trace, for example 671")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "number of ranked solutions (overrides the file)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPrice(cmd *cobra.Command, opts *priceOptions) error {
	req, err := loadPriceRequest(opts.file)
	if err != nil {
		return err
	}
	if opts.count > 0 {
		req.Solutions = opts.count
	}
	if opts.diag > 0 {
		req.Diagnostic = &dto.DiagnosticRequest{Code: opts.diag}
	}

	cfg := config.Load()
	app.InitializeLogger(cfg.Log)

	svc := service.NewPricingService(
		service.WithSearchDefaults(app.SearchDefaults(cfg.Search)),
		service.WithSearchTimeout(cfg.Search.Timeout),
		service.WithServiceLogger(logger.Logger()),
	)
	defer svc.Stop()

	result, err := svc.Price(cmd.Context(), req)
	if result != nil {
		if werr := writeResult(cmd.OutOrStdout(), result, opts.asJSON); werr != nil {
			return werr
		}
	}
	if err != nil && !errors.Is(err, service.ErrNoSolution) {
		return err
	}
	if result == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "no solution")
	}
	return nil
}

// loadPriceRequest decodes a request file, picking the codec from its extension.
func loadPriceRequest(path string) (*dto.PriceRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}

	req := &dto.PriceRequest{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, req)
	case ".json":
		err = json.Unmarshal(data, req)
	default:
		return nil, fmt.Errorf("unsupported request file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return req, nil
}

func writeResult(w io.Writer, result *model.PricingResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(w, "transaction %s: %d solution(s), %d combination(s) tried\n",
		result.TransactionID, len(result.Solutions), result.CombinationsTried)
	if result.ShortCircuited {
		fmt.Fprintln(w, "search short-circuited")
	}
	if result.ReissueError != "" {
		fmt.Fprintf(w, "reissue error: %s\n", result.ReissueError)
	}
	for _, sol := range result.Solutions {
		fmt.Fprintf(w, "#%d  %.2f NUC", sol.Rank+1, sol.TotalNUC)
		if sol.DatePair != nil {
			fmt.Fprintf(w, "  %s", sol.DatePair)
		}
		fmt.Fprintln(w)
		for _, pax := range sol.Passengers {
			fmt.Fprintf(w, "    %s\n", paxLine(pax))
		}
	}
	if result.Diagnostics != "" {
		fmt.Fprintln(w, result.Diagnostics)
	}
	return nil
}

func paxLine(p model.PaxFare) string {
	line := fmt.Sprintf("%-4s %-8s %-8s %-24s %10.2f",
		p.PaxType, p.FareMarketPath, p.PUPath, strings.Join(p.FareBasis, "/"), p.TotalNUC)
	if p.Duplicate {
		line += "  (duplicate total)"
	}
	return line
}
