// Command smoke exercises a running server's read endpoints and reports
// status mismatches. Intended for post-deploy checks.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Expect   int    `json:"expect"`
	Critical bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target   target
	Status   int
	Match    bool
	Err      error
	Duration time.Duration
}

func main() {
	var (
		base        string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		failures         int
		criticalFailures int
	)

	for _, t := range targets {
		res := check(client, base, token, t)
		status := "ok"
		if !res.Match {
			status = "FAIL"
			failures++
			if t.Critical {
				criticalFailures++
			}
		}
		if res.Err != nil {
			fmt.Printf("%-4s %-40s %s (%v)\n", t.Method, t.Path, status, res.Err)
			continue
		}
		fmt.Printf("%-4s %-40s %s status=%d expect=%d in %s\n", t.Method, t.Path, status, res.Status, t.Expect, res.Duration.Round(time.Millisecond))
	}

	fmt.Printf("\n%d targets, %d failures (%d critical)\n", len(targets), failures, criticalFailures)
	if criticalFailures > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("%s lists no targets", path)
	}
	for i := range cfg.Targets {
		if cfg.Targets[i].Expect == 0 {
			cfg.Targets[i].Expect = http.StatusOK
		}
	}
	return cfg.Targets, nil
}

func check(client *http.Client, base, token string, t target) result {
	start := time.Now()

	req, err := http.NewRequest(t.Method, base+t.Path, nil)
	if err != nil {
		return result{Target: t, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{Target: t, Err: err, Duration: time.Since(start)}
	}
	defer resp.Body.Close()

	return result{
		Target:   t,
		Status:   resp.StatusCode,
		Match:    resp.StatusCode == t.Expect,
		Duration: time.Since(start),
	}
}
