package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:8090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numAccounts  = 20
)

var catalogIDs = []string{"c1", "c2", "c3", "c4", "c5", "c6"}

var rewards = []int{1, 5, 10}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== GXD Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Accounts: %d\n\n", numWorkers, testDuration, numAccounts)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Seed the recipient pool. Registration also moves the active
	// session, so the last registered account is the one all later
	// sends are debited from.
	fmt.Println("\n--- Seeding accounts ---")
	for i := 0; i < numAccounts; i++ {
		registerAccount(fmt.Sprintf("loaduser%d", i))
	}
	registerAccount("loadtester")

	// Phase 1: Fund the sender with earn calls
	fmt.Println("\n--- Phase 1: Earning coins (POST /earn) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doEarn(rng)
	})

	// Phase 2: Mixed earn/send/read load
	fmt.Println("\n--- Phase 2: Mixed load (40% earn, 30% send, 30% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.40:
			return doEarn(rng)
		case r < 0.70:
			return doSend(rng)
		case r < 0.82:
			return doGet("/catalog")
		case r < 0.94:
			return doGet("/inbox")
		default:
			return doGet("/session")
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (10% writes, 90% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doEarn(rng)
		case r < 0.10:
			return doSend(rng)
		case r < 0.40:
			return doGet("/catalog")
		case r < 0.60:
			return doGet("/inbox")
		case r < 0.80:
			return doGet("/collection")
		default:
			return doGet("/health")
		}
	})
}

func registerAccount(username string) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "loadtest",
	})
	resp, err := httpClient.Post(baseURL+"/register", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("  register %s: %v\n", username, err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 409 means a previous run already registered it; log back in to
	// reclaim the session.
	if resp.StatusCode == http.StatusConflict {
		login, _ := json.Marshal(map[string]string{
			"username": username,
			"password": "loadtest",
		})
		lresp, lerr := httpClient.Post(baseURL+"/login", "application/json", bytes.NewReader(login))
		if lerr == nil {
			io.Copy(io.Discard, lresp.Body)
			lresp.Body.Close()
		}
	}
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func doEarn(rng *rand.Rand) result {
	body, _ := json.Marshal(map[string]int{
		"amount": rewards[rng.Intn(len(rewards))],
	})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/earn", "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /earn", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /earn", resp.StatusCode, lat, resp.StatusCode != 200}
}

// doSend treats 402 as a pass: the sender legitimately runs dry under
// sustained load and the refusal path is part of what is being tested.
func doSend(rng *rand.Rand) result {
	body, _ := json.Marshal(map[string]string{
		"giftId":  catalogIDs[rng.Intn(len(catalogIDs))],
		"to":      fmt.Sprintf("loaduser%d", rng.Intn(numAccounts)),
		"message": "load test gift",
	})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/send", "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /send", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusPaymentRequired
	return result{"POST /send", resp.StatusCode, lat, !ok}
}

func doGet(path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{"GET " + path, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET " + path, resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
