package lspbridge

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"acirgen/internal/acir"
	acirerrors "acirgen/internal/errors"
	"acirgen/internal/lower"
	"acirgen/internal/ssasyntax"
	"acirgen/internal/ucode"
)

// Handler implements the LSP server methods for the textual SSA surface
// syntax: it keeps each open document's last-known content, parses it with
// internal/ssasyntax, runs the lowering pass over the result, and
// republishes whatever InternalError/UserError/UnsupportedError comes back
// as diagnostics positioned at the error's recorded call-stack frame.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("acirgen-lsp Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("acirgen-lsp initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("acirgen-lsp shutdown")
	return nil
}

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.lowerAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// TextDocumentSyncKindFull means the last change event carries the
	// whole document, not an incremental edit.
	last := params.ContentChanges[len(params.ContentChanges)-1]
	full, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("unsupported incremental change event for %s", params.TextDocument.URI)
	}
	return h.lowerAndPublish(ctx, params.TextDocument.URI, full.Text)
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// lowerAndPublish parses text as textual SSA, runs the lowering pass, and
// sends either an empty diagnostics list (the document lowers cleanly) or
// one diagnostic per parse/lowering error found. A clear diagnostic
// notification is required even on success: editors don't clear stale
// diagnostics on their own.
func (h *Handler) lowerAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	diagnostics := h.diagnosticsFor(path, text)
	sendDiagnosticNotification(ctx, uri, diagnostics)
	return nil
}

func (h *Handler) diagnosticsFor(path, text string) []protocol.Diagnostic {
	prog, positions, parseErr := ssasyntax.ParseString(path, text)
	if parseErr != nil {
		return []protocol.Diagnostic{{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 200},
			},
			Severity: severityFor(acirerrors.Error),
			Source:   ptrString("acirgen-parse"),
			Message:  parseErr.Error(),
		}}
	}

	builder := acir.NewRefBuilder()
	catalog := ucode.MapCatalog{}
	if _, lowerErr := lower.Lower(prog, catalog, builder, lower.DuplicationAllowed); lowerErr != nil {
		if eb, ok := lowerErr.(*acirerrors.LoweringErrorBuilder); ok {
			compilerErr := eb.Build()
			positions.Attach(&compilerErr)
			return []protocol.Diagnostic{ConvertLoweringError(compilerErr)}
		}
		return []protocol.Diagnostic{{
			Range:    protocol.Range{Start: protocol.Position{Line: 0}, End: protocol.Position{Line: 0, Character: 200}},
			Severity: severityFor(acirerrors.Error),
			Source:   ptrString("acirgen-lower"),
			Message:  lowerErr.Error(),
		}}
	}

	return []protocol.Diagnostic{}
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	if raw, err := json.Marshal(diagnostics); err == nil {
		log.Println("sending diagnostics:", string(raw))
	}

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
