package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/caarlos0/env/v6"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/joho/godotenv"

	"github.com/CodedInternet/gonao/comms"
	. "github.com/CodedInternet/gonao/onboard"
	"github.com/CodedInternet/gonao/onboard/wire"
	"github.com/CodedInternet/gonao/recording"
)

type EnvConfig struct {
	JWT_ISSUER string `env:"JWT_ISSUER" envDefault:"DEV"`
	JWT_SECRET string `env:"JWT_SECRET" envDefault:"xWumOlRfhu+LBi2F2e1yF4FiaopQ5mr8klL4fpILnlI="`
	SERVER     string `env:"SERVER" envDefault:"localhost:3100"`
	CONFIG     string `env:"AGENT_CONFIG" envDefault:"./agent.yaml"`
	DB_FILE    string `env:"DB_FILE" envDefault:"./tmp/dev.db"`
	MONITOR    string `env:"MONITOR" envDefault:"0.0.0.0:8080"`
	RECORD     bool   `env:"RECORD" envDefault:"1"`
	DEBUG      bool   `env:"DEBUG" envDefault:"0"`
	DB         *storm.DB
	Conductor  *comms.Conductor
}

var (
	ENV *EnvConfig
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}

	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		log.Fatal(err)
	}
}

func main() {
	server := flag.String("server", ENV.SERVER, "Simulator host:port to connect to")
	configFile := flag.String("config", ENV.CONFIG, "Agent yaml config")
	monitor := flag.String("monitor", ENV.MONITOR, "Specify the ip:port the monitor listens on, empty to disable")
	interactive := flag.Bool("shell", true, "Run the development shell")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	config, err := LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	dbFile, _ := filepath.Abs(ENV.DB_FILE)
	if err := os.MkdirAll(filepath.Dir(dbFile), 0755); err != nil {
		log.Fatal(err)
	}
	db, err := openDb(dbFile)
	if err != nil {
		log.Fatal(err)
	}
	ENV.DB = db
	defer ENV.DB.Close() // close database when finished

	conn, err := wire.Dial(*server, 5*time.Second)
	if err != nil {
		log.Fatal(err)
	}
	logger.Printf("connected to %s", conn.RemoteAddr())

	operator := NewInteractive(32)
	agent := NewAgent(conn, config, operator, logger)
	agent.Capabilities.Dispose = conn.Close

	if ENV.RECORD {
		rec, err := recording.MakeStormRecorder(db)
		if err != nil {
			log.Fatal(err)
		}
		logger.Printf("recording session %s", rec.Session())
		agent.Recorder = rec
	}

	ENV.Conductor = comms.NewConductor(operator, logger)
	agent.Observers = append(agent.Observers, ENV.Conductor)

	if *interactive {
		shell := newShell(config, operator, ENV.Conductor, db)
		agent.Capabilities.Interact = func(ctx context.Context) error {
			go func() {
				<-ctx.Done()
				shell.Close()
			}()
			shell.Run()
			return nil
		}
	}

	if *monitor != "" {
		go func() {
			fmt.Println("Monitor listening on", *monitor)
			if err := http.ListenAndServe(*monitor, newRouter(ENV.Conductor)); err != nil {
				logger.Printf("monitor stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := agent.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

func newRouter(conductor *comms.Conductor) chi.Router {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", Login)

		r.Group(func(r chi.Router) {
			// Seek, verify and validate JWT tokens
			r.Use(ValidateJWT)

			r.Get("/refresh_token", RefreshToken)
			r.Get("/state", conductor.StateHandler)
		})
	})

	r.Route("/ws", func(r chi.Router) {
		if !ENV.DEBUG {
			r.Use(ValidateJWT)
		} else {
			fmt.Println("Running in debug mode. Authentication disabled.")
		}

		r.Get("/state", conductor.StreamHandler)
	})

	return r
}

func openDb(dbFile string) (db *storm.DB, err error) {
	db, err = storm.Open(dbFile)
	if err != nil {
		return
	}

	// call inits for each type
	if err := db.Init(&Operator{}); err != nil {
		db.Close()
		return nil, err
	}
	if err := recording.Init(db); err != nil {
		db.Close()
		return nil, err
	}

	return
}
