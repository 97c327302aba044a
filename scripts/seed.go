// Seed script that posts a graph fixture to a running server.
// Run with: go run ./scripts/seed.go [fixture.yaml]
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/Harshitk-cp/causalchain/internal/fixture"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment
	envFile := os.Getenv("CAUSAL_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	baseURL := os.Getenv("CAUSAL_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	apiKey := os.Getenv("API_KEY")

	path := "examples/graphs/release.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	g, err := fixture.Load(path)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	c := &client{baseURL: baseURL, apiKey: apiKey}
	ids := make(map[string]string, len(g.Nodes)+len(g.Tasks))

	for _, n := range g.Nodes {
		var node struct {
			ID string `json:"id"`
		}
		if err := c.post("/v1/nodes", map[string]any{
			"type":           n.Type,
			"timestamp":      n.Timestamp,
			"scale":          n.Scale,
			"description":    n.Description,
			"description_ko": n.DescriptionKo,
			"state":          n.State,
			"probability":    n.Probability,
			"confidence":     n.Confidence,
			"impact":         n.Impact,
			"source":         "seed",
		}, &node); err != nil {
			log.Fatalf("Failed to create node %q: %v", n.Key, err)
		}
		ids[n.Key] = node.ID
		fmt.Printf("Created node %-16s %s\n", n.Key, node.ID)
	}

	for _, t := range g.Tasks {
		var res struct {
			Node struct {
				ID string `json:"id"`
			} `json:"node"`
		}
		if err := c.post("/v1/tasks", t, &res); err != nil {
			log.Fatalf("Failed to sync task %q: %v", t.ID, err)
		}
		ids[t.ID] = res.Node.ID
		fmt.Printf("Synced task %-16s %s\n", t.ID, res.Node.ID)
	}

	for _, e := range g.Edges {
		ne := e.NewEdge(ids)
		if err := c.post("/v1/edges", map[string]any{
			"source_id":  ne.SourceID,
			"target_id":  ne.TargetID,
			"relation":   ne.Relation,
			"strength":   ne.Strength,
			"delay_ms":   ne.DelayMS,
			"conditions": ne.Conditions,
			"reasoning":  ne.Reasoning,
		}, nil); err != nil {
			log.Fatalf("Failed to create edge %s -> %s: %v", e.From, e.To, err)
		}
		fmt.Printf("Linked %s -> %s\n", e.From, e.To)
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("Nodes: %d\n", len(ids))
	fmt.Printf("Edges: %d\n", len(g.Edges))
}

type client struct {
	baseURL string
	apiKey  string
}

func (c *client) post(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	result, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(result))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(result, out)
}
