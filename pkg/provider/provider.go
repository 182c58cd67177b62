// Package provider is the host side of the panel boundary. It applies rule
// lists to the documents of a document.Host, exports them as untitled JSON
// documents and imports them back from the active document.
package provider

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/multichange/pkg/change"
	"github.com/walteh/multichange/pkg/document"
	"github.com/walteh/multichange/pkg/status"
	"github.com/walteh/multichange/pkg/text"
)

// Warnings shown through the host.
const (
	WarningNoActiveEditor  = "No active text editor"
	WarningMalformedImport = "The active text editor does not contain a valid multichange description - not an array of changes"
)

// Options tune how a Provider applies rule lists
type Options struct {
	// Async transforms visible documents in parallel
	Async bool
	// DryRun computes results without writing documents back
	DryRun bool
	// Reporter receives one entry per processed document when set
	Reporter status.StatusReporter
}

// Provider handles panel requests against a host
type Provider struct {
	host     document.Host
	replacer text.TextReplacer
	opts     Options
}

// New creates a provider over host
func New(host document.Host, opts Options) *Provider {
	return &Provider{
		host:     host,
		replacer: text.NewBatchReplacer(),
		opts:     opts,
	}
}

// DocumentResult is what a transform did to one document
type DocumentResult struct {
	Document *document.Document
	Result   *text.ReplacementResult
	Written  bool
	Err      error
}

// TransformResult collects the per-document results of a transform
type TransformResult struct {
	Documents     []*DocumentResult
	PatternErrors []*change.InvalidPatternError
}

// Modified counts the documents whose text changed.
func (r *TransformResult) Modified() int {
	n := 0
	for _, d := range r.Documents {
		if d.Result != nil && d.Result.WasModified {
			n++
		}
	}
	return n
}

// Failed returns the errors of documents that could not be written.
func (r *TransformResult) Failed() error {
	var errs []error
	for _, d := range r.Documents {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errors.Join(errs...)
}

// Validate reports every rule that does not compile.
func (p *Provider) Validate(changes change.List) error {
	return p.replacer.ValidateRules(changes)
}

// Transform applies changes to the active document, or to every visible
// document when multiEditor is set. Rules that do not compile are skipped
// and returned in the result; they never stop the batch.
func (p *Provider) Transform(ctx context.Context, changes change.List, multiEditor bool) (*TransformResult, error) {
	logger := zerolog.Ctx(ctx)

	replacers, perrs := change.CompileList(changes)
	for _, perr := range perrs {
		logger.Warn().Int("rule", perr.Index).Str("pattern", perr.Pattern).Err(perr.Err).Msg("skipping invalid rule")
	}

	result := &TransformResult{PatternErrors: perrs}

	if !multiEditor {
		doc, err := p.host.Active(ctx)
		if err != nil {
			if errors.Is(err, document.ErrNoActiveTarget) {
				p.host.Warn(ctx, WarningNoActiveEditor)
				return result, err
			}
			return result, errors.Errorf("reading active document: %w", err)
		}

		p.start(ctx, 1)
		dr, err := p.apply(ctx, doc, replacers)
		p.finish(ctx)
		if err != nil {
			return result, err
		}

		result.Documents = []*DocumentResult{dr}
		return result, dr.Err
	}

	docs, err := p.host.Visible(ctx)
	if err != nil {
		return result, errors.Errorf("listing visible documents: %w", err)
	}
	logger.Debug().Int("documents", len(docs)).Bool("async", p.opts.Async).Msg("transforming visible documents")

	p.start(ctx, len(docs))
	result.Documents = make([]*DocumentResult, len(docs))

	if p.opts.Async {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i, doc := range docs {
			g.Go(func() error {
				dr, err := p.apply(gctx, doc, replacers)
				if err != nil {
					return err
				}
				result.Documents[i] = dr
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			p.finish(ctx)
			return result, err
		}
	} else {
		for i, doc := range docs {
			dr, err := p.apply(ctx, doc, replacers)
			if err != nil {
				p.finish(ctx)
				return result, err
			}
			result.Documents[i] = dr
		}
	}

	p.finish(ctx)
	return result, nil
}

// apply folds the replacers over one document and commits the new text.
// Only cancellation is returned as an error; write failures and documents
// that are not UTF-8 are recorded on the result so the remaining documents
// still run.
func (p *Provider) apply(ctx context.Context, doc *document.Document, replacers []*change.Replacer) (*DocumentResult, error) {
	res, err := text.Apply(ctx, doc.Text, replacers)
	if errors.Is(err, change.ErrInvalidUTF8) {
		dr := &DocumentResult{
			Document: doc,
			Result: &text.ReplacementResult{
				OriginalContent: []byte(doc.Text),
				ModifiedContent: []byte(doc.Text),
			},
			Err: errors.Errorf("reading %s: %w", doc.URI, err),
		}
		p.track(ctx, dr)
		return dr, nil
	}
	if err != nil {
		return nil, errors.Errorf("transforming %s: %w", doc.URI, err)
	}

	dr := &DocumentResult{Document: doc, Result: res}
	if res.WasModified && !p.opts.DryRun {
		if err := p.host.Replace(ctx, doc.URI, string(res.ModifiedContent)); err != nil {
			dr.Err = errors.Errorf("replacing %s: %w", doc.URI, err)
		} else {
			dr.Written = true
		}
	}

	p.track(ctx, dr)
	return dr, nil
}

func (p *Provider) start(ctx context.Context, total int) {
	if p.opts.Reporter != nil {
		p.opts.Reporter.StartOperation(ctx, total)
	}
}

func (p *Provider) finish(ctx context.Context) {
	if p.opts.Reporter != nil {
		p.opts.Reporter.FinishOperation(ctx)
	}
}

func (p *Provider) track(ctx context.Context, dr *DocumentResult) {
	if p.opts.Reporter == nil {
		return
	}

	info := status.DocumentInfo{
		URI:          dr.Document.URI,
		Language:     dr.Document.Language,
		Status:       status.StatusUnchanged,
		Replacements: dr.Result.ReplacementCount,
	}
	switch {
	case dr.Err != nil:
		info.Status = status.StatusFailed
		info.Error = dr.Err
	case dr.Result.WasModified:
		info.Status = status.StatusModified
		info.Stats = status.Compute(string(dr.Result.OriginalContent), string(dr.Result.ModifiedContent))
	}
	p.opts.Reporter.TrackDocument(ctx, info)
}

// Save opens the rule list as a new untitled JSON document and returns its uri.
func (p *Provider) Save(ctx context.Context, changes change.List) (string, error) {
	data, err := change.Marshal(changes)
	if err != nil {
		return "", errors.Errorf("encoding changes: %w", err)
	}

	uri, err := p.host.OpenUntitled(ctx, string(data), "json")
	if err != nil {
		return "", errors.Errorf("opening untitled document: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("uri", uri).Int("changes", len(changes)).Msg("saved changes")
	return uri, nil
}

// Import reads a rule list from the active document.
func (p *Provider) Import(ctx context.Context) (change.List, error) {
	doc, err := p.host.Active(ctx)
	if err != nil {
		if errors.Is(err, document.ErrNoActiveTarget) {
			p.host.Warn(ctx, WarningNoActiveEditor)
			return nil, err
		}
		return nil, errors.Errorf("reading active document: %w", err)
	}

	list, err := change.Unmarshal([]byte(doc.Text))
	if err != nil {
		var malformed *change.MalformedImportError
		if errors.As(err, &malformed) {
			p.host.Warn(ctx, WarningMalformedImport)
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("uri", doc.URI).Int("changes", len(list)).Msg("imported changes")
	return list, nil
}

// Handle dispatches one panel message and returns the replies for the panel.
// Pattern errors of a transform come back as report-pattern-error replies
// even when the transform itself fails.
func (p *Provider) Handle(ctx context.Context, msg Message) ([]Message, error) {
	zerolog.Ctx(ctx).Trace().Str("type", msg.Type).Msg("handling message")

	switch msg.Type {
	case MessageRequestTransform:
		req, err := msg.TransformRequest()
		if err != nil {
			return nil, err
		}
		result, err := p.Transform(ctx, req.Changes, req.MultiEditor)
		replies, rerr := patternErrorReplies(result)
		if rerr != nil {
			return nil, rerr
		}
		return replies, err

	case MessageRequestSave:
		changes, err := msg.Changes()
		if err != nil {
			return nil, err
		}
		_, err = p.Save(ctx, changes)
		return nil, err

	case MessageRequestImport:
		list, err := p.Import(ctx)
		if err != nil {
			return nil, err
		}
		reply, err := NewMessage(MessageApplyImport, list)
		if err != nil {
			return nil, err
		}
		return []Message{reply}, nil

	default:
		return nil, errors.Errorf("unknown message type %q", msg.Type)
	}
}

func patternErrorReplies(result *TransformResult) ([]Message, error) {
	if result == nil {
		return nil, nil
	}
	replies := make([]Message, 0, len(result.PatternErrors))
	for _, perr := range result.PatternErrors {
		reply, err := NewMessage(MessageReportPatternError, PatternErrorReport{
			Index:   perr.Index,
			Message: perr.Message(),
		})
		if err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}
	return replies, nil
}
