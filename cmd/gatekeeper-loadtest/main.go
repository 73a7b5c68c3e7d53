package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/tekreview/gatekeeper"
	"github.com/tekreview/gatekeeper/password"
	"github.com/tekreview/gatekeeper/token"
)

func main() {
	var (
		accounts    = flag.Int("accounts", 64, "number of accounts to seed")
		clients     = flag.Int("clients", 4096, "number of distinct client addresses")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (evaluate + login)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *accounts <= 0 || *clients <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, clients, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	const plaintext = "loadtest-password"

	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	provider, emails, err := seedProvider(*accounts, plaintext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	cfg := gatekeeper.DefaultConfig()
	cfg.Session.Secret = []byte(strings.Repeat("x", 32))
	// Quotas sized so the measurement exercises the limiter without
	// saturating it.
	cfg.RateLimit.Global = gatekeeper.RatePolicy{Limit: *ops, Window: time.Minute}
	cfg.RateLimit.Auth = gatekeeper.RatePolicy{Limit: *ops, Window: time.Minute}
	cfg.Password.MemoryKB = 8192
	cfg.Password.Iterations = 1
	cfg.Password.Parallelism = 1
	cfg.Password.KeyLength = 16
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	gk, err := gatekeeper.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(provider).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer gk.Close()

	session, err := gk.Login(ctx, gatekeeper.Credentials{Email: emails[0], Password: plaintext})
	if err != nil {
		fmt.Fprintf(os.Stderr, "priming login failed: %v\n", err)
		os.Exit(1)
	}

	evaluateStats := runEvaluatePhase(ctx, gk, session, *clients, *ops, *concurrency)
	loginStats := runLoginPhase(ctx, gk, emails, plaintext, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("evaluate", evaluateStats)
	printStats("login", loginStats)

	snap := gk.MetricsSnapshot()
	fmt.Printf("allowed=%d throttled=%d unauthenticated=%d fail_open=%d\n",
		snap.Counters[gatekeeper.MetricRequestAllowed],
		snap.Counters[gatekeeper.MetricRequestThrottled],
		snap.Counters[gatekeeper.MetricUnauthenticated],
		snap.Counters[gatekeeper.MetricStoreFailOpen],
	)
}

func runEvaluatePhase(ctx context.Context, gk *gatekeeper.Gatekeeper, session *gatekeeper.LoginResult, clients, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	paths := []string{"/", "/api/articles", "/api/reviews", "/admin/posts"}

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}

				path := paths[r.Intn(len(paths))]
				n := r.Intn(clients)
				req := httptest.NewRequest("GET", path, nil)
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.%d.%d.%d", n>>16&0xff, n>>8&0xff, n&0xff))
				req.Header.Set("Authorization", "Bearer "+session.Token)

				t0 := time.Now()
				d := gk.Evaluate(ctx, req)
				elapsed := time.Since(t0)
				if d.Status == 429 || d.Status == 500 {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runLoginPhase(ctx context.Context, gk *gatekeeper.Gatekeeper, emails []string, plaintext string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}

				email := emails[r.Intn(len(emails))]
				t0 := time.Now()
				_, err := gk.Login(ctx, gatekeeper.Credentials{Email: email, Password: plaintext})
				elapsed := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}

				mu.Lock()
				latencies = append(latencies, elapsed)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

type memoryProvider struct {
	mu    sync.RWMutex
	users map[string]gatekeeper.UserRecord
}

func (p *memoryProvider) GetUserByEmail(_ context.Context, email string) (gatekeeper.UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	u, ok := p.users[email]
	if !ok {
		return gatekeeper.UserRecord{}, gatekeeper.ErrUserNotFound
	}
	return u, nil
}

func (p *memoryProvider) UpdatePasswordHash(_ context.Context, userID, newHash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for email, u := range p.users {
		if u.ID == userID {
			u.PasswordHash = newHash
			p.users[email] = u
		}
	}
	return nil
}

func seedProvider(accounts int, plaintext string) (*memoryProvider, []string, error) {
	hasher, err := password.NewHasher(password.Params{
		MemoryKB:    8192,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		return nil, nil, err
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		return nil, nil, err
	}

	p := &memoryProvider{users: make(map[string]gatekeeper.UserRecord, accounts)}
	emails := make([]string, 0, accounts)
	for i := 0; i < accounts; i++ {
		email := fmt.Sprintf("editor-%d@loadtest.local", i)
		p.users[email] = gatekeeper.UserRecord{
			ID:           fmt.Sprintf("u-%d", i),
			Email:        email,
			Name:         fmt.Sprintf("Editor %d", i),
			Role:         token.RoleAdmin,
			PasswordHash: hash,
		}
		emails = append(emails, email)
	}
	return p, emails, nil
}
