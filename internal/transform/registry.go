package transform

import (
	"strings"
	"unicode"

	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/logger"
	"github.com/TheRedSRT4/Activision-Privacy-Data-Visualizer/internal/models"
)

// Func is the contract every per-game transformer satisfies: a pure
// mapping from a parsed game to its summary. New games are supported by
// registering another Func; the parser is never touched.
type Func func(models.Game) models.GameSummary

// Registry resolves a game title to its transformer. Lookup keys are the
// title with all whitespace stripped; case and punctuation are preserved.
type Registry struct {
	transformers map[string]Func
}

// NewRegistry returns a registry with all supported games registered.
// Cold War is registered under both the full SAR heading and the short
// heading used by older exports.
func NewRegistry() *Registry {
	r := &Registry{transformers: make(map[string]Func)}
	r.Register("Call of Duty: Cold War", ColdWar)
	r.Register("Cold War", ColdWar)
	return r
}

// Register adds a transformer for a game title.
func (r *Registry) Register(title string, fn Func) {
	r.transformers[stripWhitespace(title)] = fn
}

// Resolve looks up the transformer for a game title. A missing transformer
// is an expected condition, not an error: the second return is false and
// the caller passes the raw game through unchanged.
func (r *Registry) Resolve(title string) (Func, bool) {
	fn, ok := r.transformers[stripWhitespace(title)]
	if !ok {
		logger.Warn("No transformer registered for game, using raw data", "title", title)
	}
	return fn, ok
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
