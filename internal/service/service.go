// Package service orchestrates a generation run: build the engine, drive it
// to completion, write the array, and record the run in the optional
// history and artifact stores.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/covergen/internal/engine"
	"github.com/covergen/internal/parser"
	"github.com/covergen/internal/repository"
	"github.com/covergen/internal/storage"
	"github.com/covergen/pkg/config"
	"github.com/covergen/pkg/errors"
	"github.com/covergen/pkg/model"
	"github.com/covergen/pkg/utils"
	"github.com/covergen/pkg/writer"
)

const tracerName = "github.com/covergen/internal/service"

// RunOptions carries everything one generation run needs.
type RunOptions struct {
	Params  parser.Parameters
	Partial [][]int

	RunUUID    string // auto-generated if empty
	Seed       int64
	OutputFile string // empty means stdout

	Output  engine.OutputMode
	Verbose bool
	Debug   bool

	// StoreRun records the run in the history database and uploads the
	// array to artifact storage.
	StoreRun bool
}

// Service wires the engine to the surrounding infrastructure.
type Service struct {
	cfg    *config.Config
	logger utils.Logger
	writer *writer.ArrayWriter
	stdout io.Writer

	repo  repository.RunRepository
	store storage.Storage
}

// New creates a Service. The repository and artifact store are optional and
// only used for runs that ask to be recorded.
func New(cfg *config.Config, logger utils.Logger, repo repository.RunRepository, store storage.Storage) *Service {
	if logger == nil {
		logger = &utils.NullLogger{}
	}
	return &Service{
		cfg:    cfg,
		logger: logger,
		writer: writer.NewArrayWriter(),
		stdout: os.Stdout,
		repo:   repo,
		store:  store,
	}
}

// Run executes one generation run end to end and returns the engine's
// result. Degraded outcomes (stagnation, scoring out-of-memory) are not
// errors: the best-effort array is still written and the result carries the
// status.
func (s *Service) Run(ctx context.Context, opts *RunOptions) (*model.GenerationResult, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}

	uuid := opts.RunUUID
	if uuid == "" {
		uuid = fmt.Sprintf("run-%s", time.Now().Format("20060102-150405"))
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "generation.run", trace.WithAttributes(
		attribute.String("run.uuid", uuid),
		attribute.String("run.mode", opts.Params.Mode.String()),
		attribute.Int("run.columns", opts.Params.Profile.Columns),
		attribute.Int("run.t", opts.Params.T),
	))
	defer span.End()

	req := &model.GenerationRequest{
		RunUUID:     uuid,
		Profile:     opts.Params.Profile,
		Mode:        opts.Params.Mode,
		T:           opts.Params.T,
		D:           opts.Params.D,
		Delta:       opts.Params.Delta,
		PartialRows: opts.Partial,
		Seed:        opts.Seed,
	}

	_, enumSpan := tracer.Start(ctx, "generation.enumerate")
	eng, err := engine.New(req, engine.Options{
		Logger:          s.logger,
		Output:          opts.Output,
		Verbose:         opts.Verbose,
		Debug:           opts.Debug,
		MaxWorkers:      s.cfg.Engine.MaxWorkers,
		StagnationLimit: s.cfg.Engine.StagnationLimit,
		MemoryLimitMB:   s.cfg.Engine.MemoryLimitMB,
	})
	enumSpan.End()
	if err != nil {
		return nil, errors.Wrap(errors.CodeParamInfeasible, "building engine", err)
	}

	_, genSpan := tracer.Start(ctx, "generation.rows")
	result := eng.Generate(opts.Partial)
	genSpan.End()
	result.RunUUID = uuid

	switch result.Status {
	case model.RunStatusStagnated:
		s.logger.Warn("It appears impossible to complete the array with the requested properties.")
		s.logger.Warn("Cancelling array generation; writing the rows produced so far.")
	case model.RunStatusOutOfMemory:
		s.logger.Warn("Ran out of memory while scoring candidate rows; writing the rows produced so far.")
	}

	if err := s.writeArray(result, opts.OutputFile); err != nil {
		return result, err
	}

	if opts.StoreRun {
		s.recordRun(ctx, req, result, opts.OutputFile)
	}

	return result, nil
}

// writeArray writes the finished rows to the output file, or stdout when no
// file was given.
func (s *Service) writeArray(result *model.GenerationResult, outputFile string) error {
	if outputFile == "" {
		if result.Status != model.RunStatusCompleted {
			s.logger.Info("The array up to this point was:")
		}
		return s.writer.Write(result.Rows, s.stdout)
	}
	if err := s.writer.WriteToFile(result.Rows, outputFile); err != nil {
		return errors.Wrap(errors.CodeStorageError, "writing output file", err)
	}
	return nil
}

// recordRun persists the run record and uploads the array artifact. Both
// are best-effort: the array on disk is the deliverable and a history
// failure must not discard it.
func (s *Service) recordRun(ctx context.Context, req *model.GenerationRequest, result *model.GenerationResult, outputFile string) {
	if s.store != nil {
		key := fmt.Sprintf("runs/%s/array.txt", req.RunUUID)
		_, uploadSpan := otel.Tracer(tracerName).Start(ctx, "generation.upload")
		err := s.store.Upload(ctx, key, arrayReader(s.writer, result.Rows))
		uploadSpan.End()
		if err != nil {
			s.logger.Warn("Failed to upload array artifact: %v", err)
		} else {
			s.logger.Debug("Uploaded array to %s", s.store.GetURL(key))
		}
	}

	if s.repo != nil {
		run := repository.NewGenerationRun(req, result, outputFile)
		if err := s.repo.SaveRun(ctx, run); err != nil {
			s.logger.Warn("Failed to record run history: %v", err)
		}
	}
}

func arrayReader(w *writer.ArrayWriter, rows [][]int) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(w.Write(rows, pw))
	}()
	return pr
}
