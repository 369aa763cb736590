// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"acirgen/internal/lspbridge"
)

const lsName = "acirgen"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := lspbridge.NewHandler()

	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("starting acirgen LSP server", version)
	if err := s.RunStdio(); err != nil {
		log.Println("acirgen LSP server error:", err)
		os.Exit(1)
	}
}
