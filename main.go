package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	bankingx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/agents/banking"
	orchestratorx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	llmx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/llm"
	recordsx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/records"
	statex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/state"
	toolx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/tool"
	"github.com/tanpawarit/Chative-Banking-Dialogue/api"
	configx "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/config"
	_ "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/qstash"
	tavilyx "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/tavily"
)

type AppConfig struct {
	Mode           string        `envconfig:"APP_MODE" default:"server"`
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memory"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	OracleBackend  string        `envconfig:"ORACLE_BACKEND" default:"eino"`
	AuditPublish   bool          `envconfig:"AUDIT_PUBLISH" default:"false"`
}

func (c *AppConfig) Validate() error {
	switch c.Mode {
	case "server", "cli":
	default:
		return fmt.Errorf("unknown APP_MODE %q", c.Mode)
	}
	switch c.SessionBackend {
	case "memory", "redis", "upstash":
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	switch c.OracleBackend {
	case "eino", "completions":
	default:
		return fmt.Errorf("unknown ORACLE_BACKEND %q", c.OracleBackend)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("banco agil stopped")
	}
}

func run(ctx context.Context) error {
	appCfg := configx.MustNew[AppConfig]("")

	dbCfg := configx.MustNew[recordsx.Config]("DATABASE")
	records, err := recordsx.Open(ctx, *dbCfg)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer records.Close()

	if err := records.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate record store: %w", err)
	}
	if dbCfg.Seed {
		if err := records.Seed(ctx); err != nil {
			return fmt.Errorf("seed record store: %w", err)
		}
	}

	oracle, err := newOracle(ctx, appCfg.OracleBackend)
	if err != nil {
		return err
	}

	tavilyCfg := configx.MustNew[tavilyx.Config]("TAVILY")
	market, err := toolx.NewMarketSearch(tavilyx.MustNew(*tavilyCfg))
	if err != nil {
		return err
	}

	requests, err := newRequestLog(records, appCfg.AuditPublish)
	if err != nil {
		return err
	}

	agent, err := bankingx.New(bankingx.Deps{
		Oracle:    oracle,
		Market:    market,
		Customers: records,
		Bands:     records,
		Requests:  requests,
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("mode", appCfg.Mode).
		Str("session_backend", appCfg.SessionBackend).
		Str("oracle_backend", appCfg.OracleBackend).
		Bool("audit_publish", appCfg.AuditPublish).
		Msg("config and clients loaded")

	if appCfg.Mode == "cli" {
		return runCLI(ctx, bankingx.NewConversation(agent), os.Stdin, os.Stdout)
	}

	store, err := newSessionStore(appCfg.SessionBackend, appCfg.SessionTTL)
	if err != nil {
		return err
	}
	orch, err := orchestratorx.New(store, agent)
	if err != nil {
		return err
	}
	return runServer(ctx, appCfg.HTTPAddr, api.NewRouter(api.NewHandler(orch)))
}

func newOracle(ctx context.Context, backend string) (contractx.LanguageOracle, error) {
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if backend == "completions" {
		return llmx.NewCompletionsOracle(*llmCfg)
	}
	return llmx.NewOracle(ctx, *llmCfg)
}

func newRequestLog(records *recordsx.Store, publish bool) (contractx.RequestLog, error) {
	if !publish {
		return records, nil
	}
	qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
	return recordsx.NewPublishingLog(records, qstashx.MustNew(*qstashCfg))
}

func newSessionStore(backend string, ttl time.Duration) (statex.Store, error) {
	switch backend {
	case "redis":
		redisCfg := configx.MustNew[statex.RedisConfig]("REDIS")
		return statex.NewRedisStore(*redisCfg, statex.WithTTL(ttl))
	case "upstash":
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		return statex.NewUpstashRedisStore(*upstashCfg, nil, statex.WithTTL(ttl))
	default:
		return statex.NewMemoryStore(ttl), nil
	}
}

func runServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

const (
	cliRestart = "/novo"
	cliQuit    = "/sair"
)

func runCLI(ctx context.Context, conv *bankingx.Conversation, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Banco Ágil (%s recomeça, %s fecha)\n\n", cliRestart, cliQuit)
	fmt.Fprintf(out, "assistente> %s\n", conv.Restart())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nvocê> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case cliQuit:
			return nil
		case cliRestart:
			fmt.Fprintf(out, "assistente> %s\n", conv.Restart())
			continue
		}

		reply, err := conv.ProcessMessage(ctx, line)
		if errors.Is(err, contractx.ErrSessionEnded) {
			fmt.Fprintf(out, "(conversa encerrada, digite %s para recomeçar ou %s para fechar)\n", cliRestart, cliQuit)
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "assistente> %s\n", reply)
		if conv.Ended() {
			fmt.Fprintf(out, "(conversa encerrada, digite %s para recomeçar ou %s para fechar)\n", cliRestart, cliQuit)
		}
	}
}
