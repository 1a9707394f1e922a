package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	wruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/scoremaster/scoremaster-desktop/bindings"
	"github.com/scoremaster/scoremaster-desktop/internal/apitoken"
	"github.com/scoremaster/scoremaster-desktop/internal/config"
	"github.com/scoremaster/scoremaster-desktop/internal/livehttp"
)

//go:embed all:frontend/dist
var assets embed.FS

const repoURL = "https://github.com/scoremaster/scoremaster-desktop"

var (
	appCtx   context.Context
	appCtxMu sync.RWMutex
)

// buildWindowsOptions configures Windows-specific application settings
func buildWindowsOptions() *windows.Options {
	return &windows.Options{
		BackdropType: windows.Mica,
		Theme:        windows.SystemDefault,
		CustomTheme: &windows.ThemeSettings{
			DarkModeTitleBar:   windows.RGB(20, 44, 32),
			DarkModeTitleText:  windows.RGB(236, 240, 232),
			DarkModeBorder:     windows.RGB(38, 74, 56),
			LightModeTitleBar:  windows.RGB(244, 247, 242),
			LightModeTitleText: windows.RGB(20, 44, 32),
			LightModeBorder:    windows.RGB(214, 224, 210),
		},
		WebviewIsTransparent: false,
		WindowIsTranslucent:  false,
		DisablePinchZoom:     true,
		IsZoomControlEnabled: false,
		ZoomFactor:           1.0,
		WindowClassName:      "ScoremasterWindow",
	}
}

// buildMacOptions configures macOS-specific application settings
func buildMacOptions() *mac.Options {
	iconData, err := assets.ReadFile("frontend/dist/assets/logo.png")
	var aboutIcon []byte
	if err == nil {
		aboutIcon = iconData
	}

	return &mac.Options{
		TitleBar: &mac.TitleBar{
			TitlebarAppearsTransparent: false,
			HideTitle:                  false,
			HideTitleBar:               false,
			FullSizeContent:            false,
			UseToolbar:                 false,
			HideToolbarSeparator:       true,
		},
		WebviewIsTransparent: false,
		WindowIsTranslucent:  false,
		About: &mac.AboutInfo{
			Title: "Scoremaster",
			Message: "Anotador para truco, generala, canasta, escoba y mosca.\n\n" +
				"Built with Wails\n\n" +
				"Todas las partidas se guardan en este equipo.",
			Icon: aboutIcon,
		},
	}
}

// buildLinuxOptions configures Linux-specific application settings
func buildLinuxOptions() *linux.Options {
	iconData, err := assets.ReadFile("frontend/dist/assets/logo.png")
	var windowIcon []byte
	if err == nil {
		windowIcon = iconData
	}

	return &linux.Options{
		Icon:                windowIcon,
		WindowIsTranslucent: false,
		WebviewGpuPolicy:    linux.WebviewGpuPolicyOnDemand,
		ProgramName:         "scoremaster",
	}
}

func main() {
	log.Printf("Starting Scoremaster (Go %s)...", runtime.Version())

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := bindings.New(cfg)

	vault := apitoken.NewVault(cfg.KeyringService, cfg.SecretsPath())
	apiMod := livehttp.NewAPIModule(app.Pad(), vault, livehttp.ModuleOptions{
		Enabled:      cfg.APIEnabled,
		Port:         cfg.APIPort,
		Token:        cfg.APIToken,
		RequireToken: cfg.RequireToken,
	})

	startup := func(ctx context.Context) {
		setAppContext(ctx)
		if err := app.Startup(ctx); err != nil {
			log.Fatalf("app startup failed: %v", err)
		}
		log.Printf("Data directory: %s", cfg.DataDir)

		// The local API is optional; the scorekeeper works without it.
		if err := apiMod.Startup(ctx); err != nil {
			log.Printf("local API failed to start: %v", err)
		} else if info := apiMod.Info(); info.Running {
			log.Printf("Local API ready at %s (token enabled: %v)", info.URL, info.TokenEnabled)
		}
	}

	beforeClose := func(ctx context.Context) (prevent bool) {
		if err := apiMod.Shutdown(ctx); err != nil {
			log.Printf("local API shutdown error: %v", err)
		}
		if err := app.Shutdown(ctx); err != nil {
			log.Printf("app shutdown error: %v", err)
		}
		setAppContext(nil)
		log.Println("Application is closing")
		return false
	}

	if err := wails.Run(&options.App{
		Title:            "Scoremaster",
		Width:            1100,
		Height:           760,
		MinWidth:         420,
		MinHeight:        640,
		WindowStartState: options.Normal,
		BackgroundColour: &options.RGBA{R: 20, G: 44, B: 32, A: 255},

		AssetServer: &assetserver.Options{
			Assets: assets,
		},

		OnStartup:     startup,
		OnBeforeClose: beforeClose,
		OnShutdown: func(ctx context.Context) {
			log.Println("Application shutdown complete")
		},

		Menu: buildAppMenu(cfg.DataDir),
		Bind: []interface{}{app, apiMod},

		LogLevel:           logger.INFO,
		LogLevelProduction: logger.ERROR,

		EnableDefaultContextMenu:         false,
		EnableFraudulentWebsiteDetection: false,

		ErrorFormatter: func(err error) any {
			if err == nil {
				return nil
			}
			return err.Error()
		},

		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: "5b0e7c1a-3f7d-4c52-9a5e-scoremaster-desktop",
			OnSecondInstanceLaunch: func(data options.SecondInstanceData) {
				log.Printf("Second instance launch prevented. Args: %v", data.Args)
			},
		},

		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop:     false,
			DisableWebViewDrop: true,
		},

		Windows: buildWindowsOptions(),
		Mac:     buildMacOptions(),
		Linux:   buildLinuxOptions(),
	}); err != nil {
		log.Printf("Error running Wails app: %v", err)
		fmt.Printf("Error: %v\n", err)
		panic(err)
	}

	log.Println("Application exited normally")
}

func buildAppMenu(dataDir string) *menu.Menu {
	rootMenu := menu.NewMenu()

	if runtime.GOOS == "darwin" {
		if appMenu := menu.AppMenu(); appMenu != nil {
			rootMenu.Append(appMenu)
		}
	}

	fileMenu := menu.NewMenu()
	fileMenu.AddText("Abrir carpeta de datos", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			openPathInExplorer(ctx, dataDir)
		})
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Salir", keys.CmdOrCtrl("q"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.Quit(ctx)
		})
	})
	rootMenu.Append(menu.SubMenu("Archivo", fileMenu))

	viewMenu := menu.NewMenu()
	viewMenu.AddText("Recargar", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.WindowReloadApp(ctx)
		})
	})
	viewMenu.AddText("Pantalla completa", keys.Combo("f", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			toggleFullscreen(ctx)
		})
	})
	rootMenu.Append(menu.SubMenu("Ver", viewMenu))

	helpMenu := menu.NewMenu()
	helpMenu.AddText("Repositorio", nil, func(_ *menu.CallbackData) {
		withAppContext(func(ctx context.Context) {
			wruntime.BrowserOpenURL(ctx, repoURL)
		})
	})
	rootMenu.Append(menu.SubMenu("Ayuda", helpMenu))

	return rootMenu
}

func openPathInExplorer(ctx context.Context, path string) {
	if path == "" {
		return
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		log.Printf("resolve path %s failed: %v", path, err)
		abs = path
	}

	wruntime.BrowserOpenURL(ctx, fileURI(abs))
}

func fileURI(path string) string {
	clean := filepath.ToSlash(path)
	if runtime.GOOS == "windows" && len(clean) > 0 && clean[0] != '/' {
		clean = "/" + clean
	}

	u := url.URL{Scheme: "file", Path: clean}
	return u.String()
}

func toggleFullscreen(ctx context.Context) {
	if wruntime.WindowIsFullscreen(ctx) {
		wruntime.WindowUnfullscreen(ctx)
		return
	}
	wruntime.WindowFullscreen(ctx)
}

func setAppContext(ctx context.Context) {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()
	appCtx = ctx
}

func withAppContext(action func(context.Context)) {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()
	if ctx == nil {
		log.Println("application context not initialised; ignoring menu action")
		return
	}
	action(ctx)
}
