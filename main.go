package main

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"github.com/aegis-support-poc/client/internal/core"
	"github.com/aegis-support-poc/client/internal/diagnosis/classifier"
	"github.com/aegis-support-poc/client/internal/diagnosis/hybrid"
	"github.com/aegis-support-poc/client/internal/diagnosis/model"
	"github.com/aegis-support-poc/client/internal/diagnosis/repo"
	"github.com/aegis-support-poc/client/internal/diagnosis/service"
	"github.com/aegis-support-poc/client/internal/diagnosis/workflow"
	"github.com/aegis-support-poc/client/pkg/httpx"
	logx "github.com/aegis-support-poc/client/pkg/logger"
	pkgredis "github.com/aegis-support-poc/client/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// AppConfig defines all configurable parameters for the diagnosis client,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Remote diagnosis service
	Service httpx.Config

	// Hybrid on-device path
	Hybrid  model.HybridConfig
	Catalog model.CatalogConfig

	// Session identity
	Session model.SessionConfig
}

func main() {
	fmt.Println("Aegis support-diagnosis client demo")
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	catalog, err := buildCatalog(&cfg)
	if err != nil {
		log.Fatalf("Failed to build response catalog: %v", err)
	}

	coordinator := hybrid.NewCoordinator(classifier.NewRuleBased(), catalog, cfg.Hybrid.MinConfidence)
	svc := service.NewHTTPService(&cfg.Service)
	session := workflow.NewSession(svc, coordinator, cfg.Session, map[string]string{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
	})
	defer session.Close()

	// ====================================================
	// On-device path: deterministic, no network.
	session.EditQuery("OTP code not generating")
	state, err := session.Diagnose(ctx, workflow.ModeOnDevice)
	if err != nil {
		fmt.Printf("on-device diagnosis unavailable: %v\n", err)
	} else {
		printDiagnosis("on-device", state)
	}

	// ====================================================
	// Remote path: full remediation walk against the live service.
	session.EditQuery("push approval never arrives on my phone")
	state, err = session.Diagnose(ctx, workflow.ModeRemote)
	if err != nil {
		fmt.Printf("remote diagnosis failed (is the backend up?): %v\n", err)
		return
	}
	printDiagnosis("remote", state)

	if len(state.Checklist) > 0 {
		state, err = session.ToggleAction(0)
		if err != nil {
			log.Fatalf("Toggle failed: %v", err)
		}
		fmt.Printf("attempted %q, stage=%s\n", state.Checklist[0].Label, state.Stage)

		state, err = session.Retry(ctx)
		if err != nil {
			fmt.Printf("retry failed: %v\n", err)
			return
		}
		fmt.Printf("retry #%d, stage=%s\n", state.RetryCount, state.Stage)

		state, err = session.Escalate(ctx)
		if err != nil {
			fmt.Printf("escalation rejected: %v\n", err)
		} else if state.Diagnosis != nil {
			fmt.Printf("escalated, ticket=%s stage=%s\n", state.Diagnosis.TicketID, state.Stage)
		}
	}

	if state, err = session.LoadComponentStatus(ctx); err == nil {
		for name, comp := range state.Components.Components {
			fmt.Printf("component %s: %s %s\n", name, comp.Status, comp.Detail)
		}
	}

	if state, err = session.FetchTimeline(ctx); err == nil {
		fmt.Printf("incident timeline: %d event(s) for %s\n", state.Timeline.Total, state.CorrelationID)
	}

	fmt.Println("Demo completed")
}

func buildCatalog(cfg *AppConfig) (model.ResponseCatalog, error) {
	if cfg.Catalog.Source == "redis" {
		var redisCfg pkgredis.Config
		if err := envconfig.Process("REDIS", &redisCfg); err != nil {
			return nil, err
		}
		rdb, err := redisCfg.New()
		if err != nil {
			return nil, err
		}
		return repo.NewRedisCatalog(rdb, cfg.Catalog.RedisKey), nil
	}
	return repo.NewFileCatalog(cfg.Catalog.Path), nil
}

func printDiagnosis(path string, state workflow.WorkflowState) {
	d := state.Diagnosis
	if d == nil {
		fmt.Printf("[%s] no diagnosis\n", path)
		return
	}
	fmt.Printf("[%s] intent=%s confidence=%.2f stage=%s\n", path, d.Intent, d.Confidence, state.Stage)
	fmt.Printf("      %s\n", d.Message)
	for i, item := range state.Checklist {
		fmt.Printf("      [%d] %s\n", i, item.Label)
	}
}
