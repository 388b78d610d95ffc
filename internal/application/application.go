package application

import (
	"context"
	"net"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/prefork"
)

type Application struct {
	logger             zerolog.Logger
	Router             *router.Router
	s                  *fasthttp.Server
	IdleTimeout        time.Duration
	AppName            string
	Network            string
	Hostname           string
	Port               string
	Concurrency        int
	MaxConnsPerIP      int
	MaxRequestBodySize int
	Prefork            bool
	EnablePrintRoutes  bool
	Production         bool
	ReduceMemoryUsage  bool
	TCPKeepalive       bool
}

func NewApplication(logger zerolog.Logger, conf *config.Conf) *Application {
	hostname, port := config.ParseAddress(conf.String("app.host", "0.0.0.0:8080"))
	if hostname == "" {
		if conf.String("app.network", "tcp4") == "tcp6" {
			hostname = "[::1]"
		} else {
			hostname = "0.0.0.0"
		}
	}
	application := &Application{
		logger:             logger.With().Str("name", "application").Logger(),
		Router:             router.New(),
		Production:         conf.Bool("app.production", false),
		EnablePrintRoutes:  conf.Bool("app.print-routes", true),
		AppName:            conf.String("app.name", "Huffman Codec"),
		Network:            conf.String("app.network", "tcp4"),
		Hostname:           hostname,
		Port:               port,
		Prefork:            conf.Bool("app.prefork", false),
		Concurrency:        conf.Int("app.concurrency", fasthttp.DefaultConcurrency),
		IdleTimeout:        conf.Duration("app.idle-timeout", 30*time.Second),
		ReduceMemoryUsage:  conf.Bool("app.reduce-memory-usage"),
		TCPKeepalive:       conf.Bool("app.tcp-keepalive"),
		MaxConnsPerIP:      conf.Int("app.max-conns-per-ip"),
		MaxRequestBodySize: conf.Int("app.max-request-body-size", 64*1024*1024),
	}

	return application
}

func (a *Application) HandlersCount() int {
	m := a.Router.List()
	c := 0
	for k := range m {
		c += len(m[k])
	}
	return c
}

func (a *Application) printRoutes() {
	m := a.Router.List()
	methods := make([]string, 0, len(m))
	for k := range m {
		methods = append(methods, k)
	}
	sort.Strings(methods)
	for _, method := range methods {
		for _, path := range m[method] {
			a.logger.Debug().Msgf("%-6s %s", method, path)
		}
	}
}

func (a *Application) Run() error {
	a.s = &fasthttp.Server{
		Name:               a.AppName,
		Handler:            a.Router.Handler,
		Concurrency:        a.Concurrency,
		IdleTimeout:        a.IdleTimeout,
		ReduceMemoryUsage:  a.ReduceMemoryUsage,
		TCPKeepalive:       a.TCPKeepalive,
		MaxConnsPerIP:      a.MaxConnsPerIP,
		MaxRequestBodySize: a.MaxRequestBodySize,
		CloseOnShutdown:    true,
	}

	a.Router.PanicHandler = func(ctx *fasthttp.RequestCtx, rcv any) {
		a.logger.Error().Stack().Interface("error", rcv).Msgf("Panic occurred")
		ctx.Error(fasthttp.StatusMessage(fasthttp.StatusInternalServerError), fasthttp.StatusInternalServerError)
	}

	// Debug informations
	if !a.Production {
		prefork := "Enabled"
		procs := runtime.GOMAXPROCS(0)
		if !a.Prefork {
			procs = 1
			prefork = "Disabled"
		}

		a.logger.Debug().Msgf("Version: %s", "-")
		a.logger.Debug().Msgf("Hostname: %s", a.Hostname)
		a.logger.Debug().Msgf("Port: %s", a.Port)
		a.logger.Debug().Msgf("Prefork: %s", prefork)
		a.logger.Debug().Msgf("Handlers: %d", a.HandlersCount())
		a.logger.Debug().Msgf("Processes: %d", procs)
		a.logger.Debug().Msgf("PID: %d", os.Getpid())

		if a.EnablePrintRoutes {
			a.printRoutes()
		}
	}

	if a.Prefork {
		preforkServer := prefork.New(a.s)
		preforkServer.Network = a.Network

		return preforkServer.ListenAndServe(a.Hostname + ":" + a.Port)
	}

	ln, err := net.Listen(a.Network, a.Hostname+":"+a.Port)
	if err != nil {
		return err
	}
	return a.s.Serve(ln)
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.s == nil {
		return nil
	}
	return a.s.ShutdownWithContext(ctx)
}
