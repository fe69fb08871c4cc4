// submit_runs.go: standalone script to queue every problem document in a
// directory as an asynchronous run via the Promethee API.
//
// Usage:
//
//	go run scripts/submit_runs.go -dir ./problems -operation flows -api http://localhost:8700 -client batch
//
// The operation can be overridden per file by naming it <name>.<operation>.yaml.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type submission struct {
	Path      string
	Operation string
}

var operations = map[string]bool{
	"preference": true, "veto": true, "discordance": true, "flows": true,
	"aggregate": true, "unicriterion_flows": true, "surrogate_weights": true, "srf_weights": true,
}

func main() {
	dir := flag.String("dir", "problems", "directory holding problem documents")
	operation := flag.String("operation", "flows", "default operation")
	apiURL := flag.String("api", "http://localhost:8700", "Promethee API base URL")
	clientID := flag.String("client", "batch", "X-Client-ID header value")
	dryRun := flag.Bool("dry-run", false, "print submissions without posting")
	flag.Parse()

	if !operations[*operation] {
		log.Fatalf("unknown operation %q", *operation)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("read dir: %v", err)
	}

	var subs []submission
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		subs = append(subs, submission{
			Path:      filepath.Join(*dir, e.Name()),
			Operation: operationFor(e.Name(), *operation),
		})
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Path < subs[j].Path })

	log.Printf("found %d problem documents in %s", len(subs), *dir)

	if *dryRun {
		for i, s := range subs {
			fmt.Printf("[%d] %s (operation=%s)\n", i+1, s.Path, s.Operation)
		}
		return
	}

	client := &http.Client{}
	queued, skipped := 0, 0
	for _, s := range subs {
		body, err := os.ReadFile(s.Path)
		if err != nil {
			log.Printf("skip %s: %v", s.Path, err)
			skipped++
			continue
		}
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/runs?operation="+s.Operation, bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s: %v", s.Path, err)
			skipped++
			continue
		}
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s: %v", s.Path, err)
			skipped++
			continue
		}

		var run struct {
			RunID string `json:"run_id"`
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&run)
		resp.Body.Close()

		if resp.StatusCode == http.StatusAccepted {
			log.Printf("queued %s as run %s", s.Path, run.RunID)
			queued++
		} else {
			log.Printf("skip %s: status %d %s", s.Path, resp.StatusCode, run.Error)
			skipped++
		}
	}

	log.Printf("done: %d queued, %d skipped", queued, skipped)
}

// operationFor reads an operation suffix such as "cars.veto.yaml".
func operationFor(name, fallback string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.LastIndex(stem, "."); i >= 0 {
		if op := stem[i+1:]; operations[op] {
			return op
		}
	}
	return fallback
}
