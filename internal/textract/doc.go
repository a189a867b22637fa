package textract

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Lllllllleong/authdocflow/internal/models"
)

// acquireDoc delegates legacy Word documents to the configured converter.
func (a *Acquirer) acquireDoc(ctx context.Context, logCtx *slog.Logger, path string) models.AcquiredText {
	var args []string
	if strings.TrimSuffix(filepath.Base(a.cfg.DocConverter), ".exe") == "antiword" {
		args = append(args, "-m", "UTF-8.txt")
	}
	args = append(args, path)

	out, errb, err := a.runner.Run(ctx, a.cfg.DocConverter, args...)
	if err != nil {
		logCtx.Warn("Legacy DOC conversion failed.", "converter", a.cfg.DocConverter, "error", err, "stderr", truncate(string(errb), 512))
		return models.EmptyText()
	}
	return models.NewAcquiredText(strings.ToValidUTF8(string(out), ""), models.ProvenanceNative)
}
