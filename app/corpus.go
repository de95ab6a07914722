package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"segyap/eval"
	"segyap/nlp/format/conll"
	"segyap/nlp/format/lattice"
	"segyap/nlp/format/mapping"
	"segyap/nlp/format/segmentation"
	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/types"
	"segyap/util"
)

// ReadCorpus reads filename in the configured format
func ReadCorpus(log *slog.Logger, c Config, role, filename string, a *lattice.Alphabets) ([]*lattice.Sentence, error) {
	if err := VerifyExists(log, role, filename); err != nil {
		return nil, err
	}
	policy, err := c.NodePolicy()
	if err != nil {
		return nil, err
	}
	var sents []*lattice.Sentence
	switch format := c.InputFormat(filename); format {
	case FormatYAML:
		sents, err = lattice.ReadDocumentsFile(filename, a, policy)
	default:
		var lattices []lattice.Lattice
		if lattices, err = lattice.ReadFile(filename); err == nil {
			sents, err = lattice.Sentences(lattices, a, policy)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s file %s: %w", role, filename, err)
	}
	annotated := 0
	for _, s := range sents {
		if s.Gold != nil {
			annotated++
		}
	}
	log.Info("read corpus", "role", role, "sentences", len(sents), "annotated", annotated)
	return sents, nil
}

// DecodeCorpus decodes every sentence in place, scoring those with an
// annotation
func DecodeCorpus(log *slog.Logger, decoder *hillclimb.HillClimbing, fe hillclimb.FeatureExtractor, sents []*lattice.Sentence) ([]*types.DependencyInstance, *eval.Joint, error) {
	start := time.Now()
	joint := eval.NewJoint(false)
	preds := make([]*types.DependencyInstance, len(sents))
	for i, sent := range sents {
		score, err := decoder.Decode(sent.Pred, fe)
		if err != nil {
			return nil, nil, fmt.Errorf("sentence %s: %w", sent.ID, err)
		}
		log.Debug("decoded", "sentence", sent.ID, "score", score)
		preds[i] = sent.Pred
		if sent.Gold != nil {
			if err := joint.Add(sent.Gold, sent.Pred); err != nil {
				return nil, nil, fmt.Errorf("sentence %s: %w", sent.ID, err)
			}
		}
		if (i+1)%100 == 0 {
			log.Info("decoding", "sentences", i+1, "of", len(sents))
			util.LogMemory(log)
		}
	}
	log.Info("decoded corpus", "sentences", len(sents), "seconds", time.Since(start).Seconds())
	if joint.Sentences > 0 {
		log.Info("evaluation", "sentences", joint.Sentences, "scores", joint.Summary().String())
	}
	return preds, joint, nil
}

// WriteOutput writes the conll file and, when their names are set, the
// segmentation and disambiguated lattice files
func WriteOutput(log *slog.Logger, out Outputs, preds []*types.DependencyInstance, a *lattice.Alphabets) error {
	writers := []struct {
		format, filename string
		write            func(string) error
	}{
		{"conll", out.Conll, func(f string) error {
			return conll.WriteFile(f, conll.Instance2ConllCorpus(preds, a.Labels))
		}},
		{"segmentation", out.Seg, func(f string) error { return segmentation.WriteFile(f, preds) }},
		{"mapping", out.Map, func(f string) error { return mapping.WriteFile(f, preds) }},
	}
	for _, w := range writers {
		if w.filename == "" {
			continue
		}
		if err := w.write(w.filename); err != nil {
			return fmt.Errorf("writing %s: %w", w.filename, err)
		}
		log.Info("wrote output", "format", w.format, "file", w.filename, "sentences", len(preds))
	}
	return nil
}

// StartMetrics creates the decoder metrics and, when addr is set, serves
// them over HTTP until the returned stop function is called
func StartMetrics(log *slog.Logger, addr string) (*hillclimb.Metrics, func(), error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := hillclimb.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}
	if addr == "" {
		return metrics, func() {}, nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server", "addr", addr, "err", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return metrics, func() { server.Close() }, nil
}
