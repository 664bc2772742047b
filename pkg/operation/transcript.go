package operation

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/walteh/translaterc/pkg/generate"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
)

// 📝 Transcript is the chat log of one translated file
type Transcript struct {
	Source        string             `json:"source"`
	Destination   string             `json:"destination"`
	Configuration TranscriptConfig   `json:"configuration"`
	Chat          []generate.Message `json:"chat"`
	Error         string             `json:"error,omitempty"`
}

// TranscriptConfig records what produced a transcript
type TranscriptConfig struct {
	Model        string           `json:"model,omitempty"`
	Layout       prompt.Layout    `json:"layout"`
	ChunkSize    int              `json:"chunk_size"`
	CarryContext bool             `json:"carry_context"`
	Params       generate.Params  `json:"params"`
	Instructions []prompt.Segment `json:"instructions"`
}

// TranscriptPath is where the transcript of rel is written under dir
func TranscriptPath(dir, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(rel)+".json")
}

func (o *Orchestrator) newTranscript(e mapping.FileEntry) *Transcript {
	b := o.opts.Builder
	return &Transcript{
		Source:      e.Source,
		Destination: e.Destination,
		Configuration: TranscriptConfig{
			Model:        o.opts.Model,
			Layout:       b.Layout(),
			ChunkSize:    o.opts.ChunkSize,
			CarryContext: o.opts.CarryContext,
			Params:       b.Params(),
			Instructions: b.Template().Segments(),
		},
	}
}

// saveTranscript never fails the file it describes
func (o *Orchestrator) saveTranscript(ctx context.Context, f *fileRun) {
	if f.transcript == nil {
		return
	}
	if f.out.Err != nil {
		f.transcript.Error = f.out.Err.Error()
	}

	logger := zerolog.Ctx(ctx)
	data, err := json.MarshalIndent(f.transcript, "", "  ")
	if err != nil {
		logger.Warn().Err(err).Str("path", f.entry.Rel).Msg("encoding transcript")
		return
	}
	path := TranscriptPath(o.opts.TranscriptDir, f.entry.Rel)
	if err := o.opts.Files.WriteFileAtomic(ctx, path, append(data, '\n')); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("writing transcript")
		return
	}
	logger.Debug().Str("path", path).Msg("transcript written")
}
