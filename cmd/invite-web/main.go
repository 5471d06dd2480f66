//go:build js && wasm

// Command invite-web runs the view router inside the browser page. Build
// with GOOS=js GOARCH=wasm and load it next to wasm_exec.js.
package main

import (
	"context"
	"syscall/js"

	"github.com/heyojules/invite/internal/dom"
	"github.com/heyojules/invite/internal/fragment"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	manifest, err := fragment.DefaultManifest()
	if err != nil {
		logger.Fatal("loading manifest", zap.Error(err))
	}

	origin := js.Global().Get("location").Get("origin").String()
	source, err := fragment.NewHTTPSource(origin+"/", nil)
	if err != nil {
		logger.Fatal("fragment source", zap.Error(err))
	}

	if _, err := dom.Mount(context.Background(), dom.Options{
		Source:  source,
		Views:   manifest.RouterViews(),
		Default: manifest.DefaultView(),
		Logger:  logger,
	}); err != nil {
		logger.Fatal("mounting router", zap.Error(err))
	}

	select {}
}
