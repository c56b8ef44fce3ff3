package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config holds the benchmark settings
var (
	targetURL   string
	opsToken    string
	concurrency int
	duration    time.Duration
	workload    string
	accounts    int
)

// Metrics
var (
	totalRequests uint64
	successOK     uint64
	failAuth      uint64
	failInvalid   uint64
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "Ops API base URL")
	flag.StringVar(&opsToken, "token", "", "Ops API bearer token")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.StringVar(&workload, "workload", "uniform", "Workload type: uniform | hotspot")
	flag.IntVar(&accounts, "accounts", 1000, "Seeded account id range")
}

func main() {
	flag.Parse()
	log.Printf("Starting Benchmark: %s | Workers: %d | Duration: %s", workload, concurrency, duration)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for time.Since(start) < duration {
		id := pickAccount()
		payload := map[string]interface{}{"amount": int64(100)}
		body, _ := json.Marshal(payload)

		url := fmt.Sprintf("%s/api/v1/accounts/%d/credit", targetURL, id)
		req, _ := http.NewRequest("POST", url, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		if opsToken != "" {
			req.Header.Set("Authorization", "Bearer "+opsToken)
		}

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 200:
			atomic.AddUint64(&successOK, 1)
		case 401:
			atomic.AddUint64(&failAuth, 1)
		case 422:
			atomic.AddUint64(&failInvalid, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func pickAccount() int64 {
	if workload == "hotspot" {
		// Hotspot: 90% of traffic goes to Account 1
		if rand.Float32() < 0.90 {
			return 1
		}
	}
	return int64(rand.Intn(accounts) + 1)
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	ok := atomic.LoadUint64(&successOK)
	auth := atomic.LoadUint64(&failAuth)
	invalid := atomic.LoadUint64(&failInvalid)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()

	results := map[string]interface{}{
		"workload":       workload,
		"duration_sec":   d.Seconds(),
		"total_requests": total,
		"throughput_tps": tps,
		"success_ok":     ok,
		"fail_auth":      auth,
		"fail_invalid":   invalid,
		"errors":         fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)

	// Also save to file
	filename := fmt.Sprintf("results_%s.json", workload)
	file, _ := os.Create(filename)
	defer file.Close()
	json.NewEncoder(file).Encode(results)
}
