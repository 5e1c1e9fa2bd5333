// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-cipherlab.
//
// go-cipherlab is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package service turns user submissions (inline text or an uploaded file)
// into engine requests and shapes the engine output into a downloadable
// result. It owns the file rules the engine knows nothing about: the .txt
// restriction for letter ciphers, filename metadata framing for binary
// files, base64 display of binary ciphertext and output naming.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jeremyhahn/go-cipherlab/pkg/adapters/logger"
	"github.com/jeremyhahn/go-cipherlab/pkg/engine"
	"github.com/jeremyhahn/go-cipherlab/pkg/metadata"
	"github.com/jeremyhahn/go-cipherlab/pkg/metrics"
	"github.com/jeremyhahn/go-cipherlab/pkg/modular"
	"github.com/jeremyhahn/go-cipherlab/pkg/storage"
	"github.com/jeremyhahn/go-cipherlab/pkg/types"
)

// ErrStoreDisabled is returned by Result when no result store is configured.
var ErrStoreDisabled = errors.New("service: result store disabled")

// Upload is a submitted file.
type Upload struct {
	Name string
	Data []byte
}

// Job is one submission.
type Job struct {
	Cipher    string
	Operation string
	Key       string
	Key2      string

	// AffineA and AffineB fall back to Defaults when nil.
	AffineA *int
	AffineB *int

	// HillMatrix falls back to Defaults when empty.
	HillMatrix [][]int64

	// Text is used when File is nil.
	Text string
	File *Upload
}

// Result is a processed job.
type Result struct {
	Variant   types.Variant
	Operation types.Operation

	// Data is the output as it would be downloaded.
	Data     []byte
	Filename string
	IsFile   bool
	Size     int

	// Text is a human-readable preview of Data.
	Text string

	// ResultID is the content ID in the result store, empty when the
	// store is disabled or the write failed.
	ResultID string
}

// Defaults are the parameters used when a job omits them.
type Defaults struct {
	AffineA    int
	AffineB    int
	HillMatrix [][]int64
}

// Options configures a Service.
type Options struct {
	Engine   *engine.Engine
	Store    *storage.ResultStore
	Logger   logger.Logger
	Defaults Defaults
}

// Service processes jobs. It is safe for concurrent use.
type Service struct {
	engine   *engine.Engine
	store    *storage.ResultStore
	logger   logger.Logger
	defaults Defaults
}

// New creates a Service. A nil engine uses engine defaults and a nil
// logger discards output.
func New(opts Options) *Service {
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(engine.DefaultLimits())
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		engine:   eng,
		store:    opts.Store,
		logger:   log,
		defaults: opts.Defaults,
	}
}

// Engine returns the underlying engine.
func (s *Service) Engine() *engine.Engine {
	return s.engine
}

// Store returns the result store, or nil when disabled.
func (s *Service) Store() *storage.ResultStore {
	return s.store
}

// Ciphers lists the supported variants.
func (s *Service) Ciphers() []engine.CipherInfo {
	return s.engine.Ciphers()
}

// Process runs one job end to end.
func (s *Service) Process(ctx context.Context, job *Job) (*Result, error) {
	if job == nil {
		return nil, types.NewError(types.KindMalformedInput, "service", "job is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	variant := types.ParseVariant(job.Cipher)
	if !variant.IsValid() {
		return nil, types.NewError(types.KindUnsupported, "service",
			fmt.Sprintf("unsupported cipher %q", job.Cipher))
	}
	op := types.OperationEncrypt
	if job.Operation != "" {
		op = types.ParseOperation(job.Operation)
		if !op.IsValid() {
			return nil, types.NewError(types.KindUnsupported, "service",
				fmt.Sprintf("unsupported operation %q", job.Operation))
		}
	}

	done := metrics.JobStarted()
	defer done()
	start := time.Now()

	result, err := s.process(ctx, job, variant, op)
	elapsed := time.Since(start)
	if err != nil {
		metrics.RecordOperation(variant.String(), op.String(), metrics.StatusError, elapsed.Seconds())
		metrics.RecordError(variant.String(), op.String(), types.KindOf(err).String())
		s.logger.WarnContext(ctx, "cipher job failed",
			logger.String("variant", variant.String()),
			logger.String("operation", op.String()),
			logger.String("error_kind", types.KindOf(err).String()),
			logger.Error(err))
		return nil, err
	}
	metrics.RecordOperation(variant.String(), op.String(), metrics.StatusSuccess, elapsed.Seconds())

	s.storeResult(ctx, result)

	s.logger.InfoContext(ctx, "cipher job completed",
		logger.String("variant", variant.String()),
		logger.String("operation", op.String()),
		logger.Bool("is_file", result.IsFile),
		logger.Int("size", result.Size),
		logger.String("result_id", result.ResultID),
		logger.Duration("duration", elapsed))
	return result, nil
}

func (s *Service) process(ctx context.Context, job *Job, variant types.Variant, op types.Operation) (*Result, error) {
	in, err := prepareInput(job, variant, op)
	if err != nil {
		return nil, err
	}
	source := metrics.SourceText
	if in.isFile {
		source = metrics.SourceFile
	}
	metrics.ObservePayload(variant.String(), op.String(), source, len(in.payload))

	req := &engine.Request{
		Variant:   variant,
		Operation: op,
		Payload:   in.payload,
		Key:       job.Key,
		Key2:      job.Key2,
	}
	switch variant {
	case types.VariantAffine:
		req.Affine = s.affineParams(job)
	case types.VariantHill:
		m, err := s.hillMatrix(job)
		if err != nil {
			return nil, err
		}
		req.Matrix = m
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out, err := s.engine.Run(req)
	if err != nil {
		return nil, err
	}

	return shapeOutput(in, variant, op, out), nil
}

func (s *Service) affineParams(job *Job) *engine.AffineParams {
	p := &engine.AffineParams{A: s.defaults.AffineA, B: s.defaults.AffineB}
	if job.AffineA != nil {
		p.A = *job.AffineA
	}
	if job.AffineB != nil {
		p.B = *job.AffineB
	}
	return p
}

func (s *Service) hillMatrix(job *Job) (modular.Matrix, error) {
	rows := job.HillMatrix
	if len(rows) == 0 {
		rows = s.defaults.HillMatrix
	}
	if len(rows) == 0 {
		return nil, types.NewError(types.KindMalformedInput, "service", "hill matrix is required")
	}
	return modular.NewMatrix(rows)
}

func (s *Service) storeResult(ctx context.Context, result *Result) {
	if s.store == nil {
		return
	}
	meta, err := s.store.Put(ctx, result.Data, storage.ResultMeta{
		Filename:  result.Filename,
		Variant:   result.Variant.String(),
		Operation: result.Operation.String(),
		IsFile:    result.IsFile,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to store result",
			logger.String("backend", s.store.Name()),
			logger.Error(err))
		return
	}
	result.ResultID = meta.ID
}

// Result fetches a stored result by content ID.
func (s *Service) Result(ctx context.Context, id string) ([]byte, *storage.ResultMeta, error) {
	if s.store == nil {
		return nil, nil, ErrStoreDisabled
	}
	return s.store.Get(ctx, id)
}

// Results lists stored results, newest first.
func (s *Service) Results(ctx context.Context) ([]storage.ResultMeta, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	metas, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// DeleteResult removes a stored result.
func (s *Service) DeleteResult(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreDisabled
	}
	return s.store.Delete(ctx, id)
}

// SelfTest runs the engine known-answer vectors.
func (s *Service) SelfTest() error {
	return s.engine.SelfTest()
}

// input is a job after file and encoding rules have been applied.
type input struct {
	payload  []byte
	isFile   bool
	filename string
	ext      string
}

func prepareInput(job *Job, variant types.Variant, op types.Operation) (*input, error) {
	if job.File == nil {
		if variant.Domain() == types.DomainByte && op == types.OperationDecrypt {
			return &input{payload: DecodeInlineCiphertext(job.Text)}, nil
		}
		return &input{payload: []byte(job.Text)}, nil
	}

	name := baseName(job.File.Name)
	ext := FileExt(name)
	in := &input{isFile: true, filename: name, ext: ext}

	if variant.Domain() == types.DomainLetter {
		if ext != "txt" {
			return nil, types.NewError(types.KindUnsupported, "service",
				fmt.Sprintf("cipher %s only accepts .txt files", variant))
		}
		in.payload = DecodeText(job.File.Data)
		return in, nil
	}

	if op == types.OperationEncrypt {
		in.payload = metadata.Wrap(name, ext, job.File.Data)
	} else {
		in.payload = job.File.Data
	}
	return in, nil
}

func shapeOutput(in *input, variant types.Variant, op types.Operation, out []byte) *Result {
	res := &Result{
		Variant:   variant,
		Operation: op,
		IsFile:    in.isFile,
	}
	letter := variant.Domain() == types.DomainLetter

	if !in.isFile {
		res.Data = out
		res.Filename = op.String() + "_result.txt"
		switch {
		case letter:
			res.Text = string(out)
		case op == types.OperationEncrypt:
			res.Text = EncodeDisplay(out)
		default:
			res.Text = DisplayText(out)
		}
		res.Size = len(res.Data)
		return res
	}

	name, ext := in.filename, in.ext
	if !letter && op == types.OperationDecrypt {
		if hdr, content, ok := metadata.Unwrap(out); ok {
			name = hdr.Name
			if name == "" {
				name = "decrypted"
			}
			ext = hdr.Ext
			if ext == "" {
				ext = "bin"
			}
			out = content
		}
	}
	res.Data = out
	res.Size = len(out)
	res.Filename = OutputFilename(name, ext, op, letter)

	if ext == "txt" || letter {
		res.Text = PreviewText(out)
	} else {
		res.Text = FileProcessedText
	}
	return res
}
