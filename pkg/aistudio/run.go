package aistudio

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/seeliang/google-cloud-engineering/pkg/report"
)

// DefaultPrompt is sent when no prompt is given on the command line.
const DefaultPrompt = "Explain what this program is and what it does in under 70 words."

// Generator is implemented by Client.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (json.RawMessage, error)
}

// RunOptions controls a single Run.
type RunOptions struct {
	Prompt     string
	OutputPath string
	// Strict returns request failures instead of only logging them.
	Strict bool
}

// Run sends the prompt, logs the outcome and stores the response at
// OutputPath. Persistence failures are logged and do not fail the run.
func Run(ctx context.Context, gen Generator, logger *zap.Logger, opts RunOptions) (json.RawMessage, error) {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	result, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Error("AI Studio request failed", zap.String("prompt", prompt), zap.Error(err))
		if opts.Strict {
			return nil, err
		}
		return nil, nil
	}

	logger.Info("AI Studio response received", zap.String("prompt", prompt))

	if opts.OutputPath != "" {
		if err := report.WriteJSON(opts.OutputPath, result); err != nil {
			logger.Warn("Failed to persist AI Studio response", zap.String("outputPath", opts.OutputPath), zap.Error(err))
		} else {
			logger.Info("AI Studio response saved", zap.String("outputPath", opts.OutputPath))
		}
	}

	return result, nil
}
