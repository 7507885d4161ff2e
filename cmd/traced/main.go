package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/idtrace/traceability-controller/cmd/traced/handlers"
	"github.com/idtrace/traceability-controller/pkg/auth"
	kcc "github.com/idtrace/traceability-controller/pkg/configs/controller"
	kdb "github.com/idtrace/traceability-controller/pkg/db"
	kpg "github.com/idtrace/traceability-controller/pkg/db/postgres"
	"github.com/idtrace/traceability-controller/pkg/status"
	"github.com/idtrace/traceability-controller/pkg/traction"
	"github.com/idtrace/traceability-controller/pkg/utils/echoutil"
	"github.com/idtrace/traceability-controller/pkg/utils/filewatch"
	"github.com/idtrace/traceability-controller/pkg/utils/retry"
	"github.com/idtrace/traceability-controller/pkg/vc/didweb"
	"github.com/idtrace/traceability-controller/pkg/worker"
)

// startup grace for the agent sidecar. When it is exceeded the server starts
// anyway and /status/ready keeps answering 503 until the agent shows up.
const agentWait = 30 * time.Second

func main() {
	configPath := flag.String("config-path", "", "controller config path")
	loglevel := flag.String("loglevel", "info", "log level. debug|info|warn|error|off")
	pcert := flag.String("cert", "", "certification file for TLS")
	pkey := flag.String("certkey", "", "key of certification file for TLS")
	flag.Parse()

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())

	// set log
	echoutil.SetLevel(e, *loglevel)
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		e.DefaultHTTPErrorHandler(err, ctx)
		e.Logger.Error(err)
	}
	e.Use(echoutil.LogHandlerFunc)

	// resolve configuration: file first, environment contract on top.
	conf, err := kcc.LoadControllerConfig(*configPath)
	if err != nil {
		log.Fatalf("can not read configuration: %s", err)
	}
	if err := conf.ResolveEnviron(os.Getenv); err != nil {
		log.Fatalf("can not resolve configuration: %s", err)
	}
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *configPath != "" {
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, *configPath)
		if err != nil {
			log.Fatalf("can not watch configuration: %s", err)
		}
		defer cancel()
		ctx = wctx
	}

	// storage
	db, err := getDBAccessor(ctx, conf.DBURI)
	if err != nil {
		log.Fatalf("can not connect to database: %s", err)
	}
	defer db.Close()

	// agent
	agent := traction.New(conf.Traction.APIEndpoint, conf.Traction.TenantID, conf.Traction.APIKey)
	waitForAgent(ctx, agent)

	issuer := auth.NewTokenIssuer(conf.Traction.APIKey)
	lists := status.NewManager(db, agent, conf.StatusListURL)

	// own DIDs live in the agent wallet; foreign did:web issuers are
	// resolved via their published DID document.
	resolver := didweb.NewResolver()
	verkeyFor := func(ctx context.Context, did string) (string, error) {
		if strings.HasPrefix(did, conf.DIDBase()+":") {
			return agent.GetVerkey(ctx, did)
		}
		return resolver.Verkey(ctx, did)
	}

	// jobs run detached from ctx: queued re-signs survive SIGTERM and are
	// drained below after the server stops.
	pool := worker.New(conf.Workers, log.Default())
	pool.Start()

	// handlers
	ns := "/" + conf.DidNamespace
	label := "label"
	bearer := issuer.Bearer(label)

	{
		e.GET("/status/live", handlers.LiveHandler())
		e.GET("/status/ready", handlers.ReadyHandler(db, agent))
	}

	{
		// public surface of the did:web namespace
		e.GET(ns+"/:label/did.json", handlers.DIDDocumentHandler(db.Organizations(), label))
		e.GET(
			ns+"/:label/credentials/status/:listType",
			handlers.StatusListCredentialHandler(db.StatusLists(), label, "listType"),
		)
	}

	{
		e.POST(
			ns+"/:label/register",
			handlers.RegisterOrganizationHandler(
				db.Organizations(), agent, issuer, conf.OrganizationDID, label,
			),
			auth.APIKey(conf.Traction.APIKey),
		)
	}

	{
		credentialId := "credentialId"
		e.GET(
			ns+"/:label/credentials/:credentialId",
			handlers.GetCredentialHandler(db.Credentials(), label, credentialId),
			bearer,
		)
		e.POST(
			ns+"/:label/credentials/issue",
			handlers.IssueCredentialHandler(db, agent, lists, label),
			bearer,
		)
		e.POST(
			ns+"/:label/credentials/verify",
			handlers.VerifyCredentialHandler(agent, verkeyFor, lists, label),
			bearer,
		)
		e.POST(
			ns+"/:label/credentials/status",
			handlers.UpdateCredentialStatusHandler(db, lists, pool, label),
			bearer,
		)
	}

	{
		e.POST(
			ns+"/:label/presentations/verify",
			handlers.VerifyPresentationHandler(agent, conf.VerifierEndpoint),
			bearer,
		)
	}

	log.Println("registered routes:")
	for _, r := range e.Routes() {
		log.Println(r.Method, r.Path)
	}

	context.AfterFunc(ctx, func() {
		log.Println("shutting down...")
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := e.Shutdown(graceful); err != nil {
			log.Printf("error on shutdown: %s", err)
		}
	})

	cert, key := *pcert, *pkey
	if cert != "" && key != "" {
		err = e.StartTLS(":"+conf.ServerPort, cert, key)
	} else {
		err = e.Start(":" + conf.ServerPort)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}

	// drain queued re-sign jobs before exiting.
	drain, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := pool.Shutdown(drain); err != nil {
		log.Printf("worker pool did not drain: %s", err)
	}
}

func getDBAccessor(ctx context.Context, dburi string) (kdb.ControllerDatabase, error) {
	return kpg.New(ctx, dburi)
}

func waitForAgent(ctx context.Context, agent traction.Client) {
	wctx, cancel := context.WithTimeout(ctx, agentWait)
	defer cancel()

	err := retry.Blocking(wctx, retry.StaticBackoff(3*time.Second), func() error {
		if err := agent.Ready(wctx); err != nil {
			log.Printf("agent is not ready yet: %s", err)
			return retry.ErrRetry
		}
		return nil
	})
	if err != nil {
		log.Printf("starting without a ready agent: %s", err)
	}
}
