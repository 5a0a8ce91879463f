/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"drawover/internal/backend"
	"drawover/internal/bridge"
	"drawover/internal/compose"
	"drawover/internal/config"
	"drawover/internal/crash"
	"drawover/internal/export"
	"drawover/internal/history"
	applog "drawover/internal/log"
	"drawover/internal/render"
	"drawover/internal/scene"
	"drawover/internal/storage"
	"drawover/internal/telemetry"
	"drawover/internal/ui"
	"drawover/internal/version"
)

func usage() {
	fmt.Println("Drawover — interactive drawing canvas")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  drawover version|-v|--version          Show version")
	fmt.Println("  drawover init <dir> <name>             Create a new project at <dir>")
	fmt.Println("  drawover open <dir>                    Open project at <dir> and print summary")
	fmt.Println("  drawover export <dir> <out.png|.pdf>   Render the scene to a flat image")
	fmt.Println("  drawover serve                         Run the scene archive server")
	fmt.Println("  drawover ui [<dir>]                    Launch desktop UI (build with -tags fyne)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()
	telemetry.InitDefault()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Drawover — interactive drawing canvas")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			name := args[3]
			l.Info("init project", slog.String("root", abs), slog.String("name", name))
			store := scene.NewStore()
			h, err := storage.InitProject(abs, store.Document(name))
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Printf("Opened project: %s\n", h.Doc.Name)
			fmt.Printf("Objects: %d, Groups: %d\n", len(h.Doc.Objects), len(h.Doc.Groups))
			fmt.Println("Root:", h.Root)
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and <out.png|.pdf>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			out := args[3]
			if err := exportProject(abs, out, &ph); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Exported", out)
			return
		case "serve":
			if err := backend.Start(); err != nil {
				l.Error("server failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// exportProject renders a project's scene into a flat PNG or PDF file.
func exportProject(root, out string, ph **storage.ProjectHandle) error {
	cfg, _, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	h, err := storage.Open(root)
	if err != nil {
		return err
	}
	*ph = h
	store := scene.NewStore()
	if err := store.LoadDocument(h.Doc); err != nil {
		return err
	}
	comp := compose.New(cfg.Canvas.Width, cfg.Canvas.Height, render.NewRenderer(cfg.Canvas.SelectionAccent))
	br := bridge.New(store, comp, history.NewManager(history.Config{}))
	img := br.ExportImage()

	switch strings.ToLower(filepath.Ext(out)) {
	case ".png":
		if err := export.WritePNG(img, out); err != nil {
			return err
		}
		telemetry.Event("export_png", nil)
	case ".pdf":
		if err := export.WritePDF(img, out, export.PDFOptions{Title: h.Doc.Name}); err != nil {
			return err
		}
		telemetry.Event("export_pdf", nil)
	default:
		return fmt.Errorf("unsupported output format %q (use .png or .pdf)", filepath.Ext(out))
	}
	return nil
}
