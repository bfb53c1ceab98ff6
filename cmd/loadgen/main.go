// Package main - loadgen
// Load generator for the game server: simulates many detectives playing in
// parallel rooms while one watcher counts activity feed messages. Used to
// verify the per-room write serialization holds under concurrency.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the load generator
type Config struct {
	ServerURL  string
	FeedURL    string
	NumClients int
	Interval   time.Duration
	Duration   time.Duration
	TemplateID string
}

// Stats tracks performance metrics
type Stats struct {
	TravelsSent  int64
	FeedReceived int64
	Errors       int64
	Latencies    []time.Duration
	mu           sync.Mutex
}

// Location ids exercised by the simulated detectives. The last entries are
// deliberately unknown to also hit the rejection path.
var locationIDs = []string{
	"112102", "440321", "220123",
	"111111", "222222", "333333",
	"garbage", "000000",
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "HTTP API base URL")
	feedURL := flag.String("feed", "ws://localhost:8080/ws", "WebSocket feed URL")
	numClients := flag.Int("clients", 20, "Number of concurrent detectives")
	interval := flag.Duration("interval", 100*time.Millisecond, "Travel interval per detective")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	templateID := flag.String("template", "classic", "Template id for the generated rooms")
	flag.Parse()

	config := Config{
		ServerURL:  *serverURL,
		FeedURL:    *feedURL,
		NumClients: *numClients,
		Interval:   *interval,
		Duration:   *duration,
		TemplateID: *templateID,
	}

	fmt.Println("=========================================")
	fmt.Println("GUMSHOE LOADGEN - Load Test Tool")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Detectives: %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.Interval)
	fmt.Printf("Duration: %v\n", config.Duration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.Duration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := runLoadTest(ctx, config)
	printResults(stats, config)
}

func runLoadTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	go watchFeed(ctx, config, stats)

	var wg sync.WaitGroup

	fmt.Println("\nStarting detectives...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runDetective(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d detectives started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := atomic.LoadInt64(&stats.TravelsSent)
				recv := atomic.LoadInt64(&stats.FeedReceived)
				errs := atomic.LoadInt64(&stats.Errors)
				fmt.Printf("Progress: Travels=%d Feed=%d Errors=%d\n", sent, recv, errs)
			}
		}
	}()

	wg.Wait()
	return stats
}

// watchFeed counts activity entries arriving over the websocket feed.
func watchFeed(ctx context.Context, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.FeedURL, nil)
	if err != nil {
		log.Printf("Feed connection failed: %v", err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			return
		}
		atomic.AddInt64(&stats.FeedReceived, 1)
	}
}

func runDetective(ctx context.Context, clientID int, config Config, stats *Stats) {
	userID := fmt.Sprintf("detective_%03d", clientID)
	client := &http.Client{Timeout: 10 * time.Second}

	roomID, err := createRoom(ctx, client, config, userID)
	if err != nil {
		log.Printf("Detective %d: room creation failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}

	ticker := time.NewTicker(config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			location := locationIDs[rand.Intn(len(locationIDs))]
			start := time.Now()

			if err := postTravel(ctx, client, config, roomID, userID, location); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.TravelsSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

func createRoom(ctx context.Context, client *http.Client, config Config, userID string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"template_id": config.TemplateID,
		"user_id":     userID,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.ServerURL+"/api/rooms", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var room struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return "", err
	}
	return room.ID, nil
}

func postTravel(ctx context.Context, client *http.Client, config Config, roomID, userID, location string) error {
	body, _ := json.Marshal(map[string]string{
		"location_id": location,
		"user_id":     userID,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		config.ServerURL+"/api/rooms/"+roomID+"/travel", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 400 is the expected answer for the deliberately unknown ids.
	if resp.StatusCode >= 500 {
		return fmt.Errorf("server error %d", resp.StatusCode)
	}
	return nil
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("LOAD TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.TravelsSent)
	recv := atomic.LoadInt64(&stats.FeedReceived)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Travels Sent:   %d\n", sent)
	fmt.Printf("Feed Received:  %d\n", recv)
	fmt.Printf("Errors:         %d\n", errs)
	fmt.Printf("Error Rate:     %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / config.Duration.Seconds()
	fmt.Printf("Throughput:     %.2f req/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	switch {
	case errs == 0:
		fmt.Println("TEST PASSED: no errors under load")
	case float64(errs)/float64(sent+1) < 0.05:
		fmt.Println("TEST WARNING: some errors detected")
	default:
		fmt.Println("TEST FAILED: high error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"travels_sent":       sent,
		"feed_received":      recv,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"clients":  config.NumClients,
			"interval": config.Interval.String(),
			"duration": config.Duration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("loadgen_results.json", jsonData, 0644)
	fmt.Println("\nResults saved to loadgen_results.json")
}
