package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"NetSentry/internal/api"
	"NetSentry/internal/config"
	"NetSentry/internal/emitter"
	"NetSentry/internal/engine/monitor"
	"NetSentry/internal/model"
	"NetSentry/internal/notification"
	"NetSentry/internal/registration"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the agent configuration file.")
	register := flag.Bool("register", false, "Register this device with the backend and exit.")
	flag.Parse()

	log.Println("Starting sentry-agent...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	if *register {
		runRegistration(cfg)
		return
	}

	// Resolve the device identity: explicit config wins, otherwise a
	// previously registered identity.
	if cfg.DeviceID == "" {
		if !registration.IsRegistered(cfg.Registration.ConfigPath) {
			log.Fatalf("No device_id configured and agent is not registered. Run with -register first.")
		}
		agentCfg, err := registration.LoadAgentConfig(cfg.Registration.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load agent identity: %v", err)
		}
		cfg.DeviceID = agentCfg.DeviceID
	}

	mon, err := monitor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create monitor: %v", err)
	}

	sinks, notifier, err := buildSinks(cfg)
	if err != nil {
		log.Fatalf("Failed to create alert sinks: %v", err)
	}
	em := emitter.New(sinks, notifier)

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(cfg.API.ListenAddr, mon)
		apiServer.Start()
	}

	em.Run(mon.Alerts())
	mon.Start()

	// Wait for a shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping engine...")
	// The API can trigger sweeps that emit alerts, so it must be down
	// before the monitor closes the egress channel.
	if apiServer != nil {
		apiServer.Stop()
	}
	mon.Stop()
	em.Wait()
	log.Println("Shutdown complete.")
}

// buildSinks assembles the configured alert sinks and the optional critical
// alert notifier.
func buildSinks(cfg *config.Config) ([]model.Sink, model.Notifier, error) {
	var sinks []model.Sink

	if cfg.Emitter.LogAlerts {
		sinks = append(sinks, emitter.NewLogSink())
	}
	if cfg.Emitter.SpoolPath != "" {
		fileSink, err := emitter.NewFileSink(cfg.Emitter.SpoolPath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fileSink)
	}
	if cfg.Emitter.NATS.Enabled {
		natsSink, err := emitter.NewNATSSink(cfg.Emitter.NATS)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, natsSink)
	}
	if cfg.Emitter.ClickHouse.Enabled {
		chSink, err := emitter.NewClickHouseSink(cfg.Emitter.ClickHouse)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, chSink)
	}

	if len(sinks) == 0 {
		log.Println("No sinks configured, defaulting to the log sink.")
		sinks = append(sinks, emitter.NewLogSink())
	}

	var notifier model.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notification.NewEmailNotifier(cfg.SMTP)
		log.Println("Critical alert email escalation enabled.")
	}

	return sinks, notifier, nil
}

// runRegistration enrolls the device with the backend using the details in
// the config file's registration section plus interactive prompts.
func runRegistration(cfg *config.Config) {
	if cfg.Registration.Endpoint == "" {
		log.Fatalf("registration.endpoint is not configured.")
	}

	req := promptRegistrationInfo()
	svc := registration.NewService(cfg.Registration.Endpoint, cfg.Registration.ConfigPath)

	resp, err := svc.Register(req)
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}

	log.Println("Registration successful!")
	log.Printf("Device ID: %s", resp.DeviceID)
	log.Printf("Status: %s", resp.Status)
	log.Printf("Identity saved to %s", cfg.Registration.ConfigPath)
}

func promptRegistrationInfo() registration.Request {
	scanner := bufio.NewScanner(os.Stdin)
	prompt := func(label string, dst *string) {
		fmt.Printf("%s: ", label)
		if scanner.Scan() {
			*dst = strings.TrimSpace(scanner.Text())
		}
	}

	var req registration.Request
	prompt("Enter device name", &req.DeviceName)
	prompt("Enter organization", &req.Organization)
	prompt("Enter environment (production/staging/development)", &req.Environment)
	prompt("Enter location", &req.Location)
	prompt("Enter admin email", &req.AdminEmail)
	prompt("Enter policy group", &req.PolicyGroup)
	prompt("Enter license key", &req.LicenseKey)
	return req
}
