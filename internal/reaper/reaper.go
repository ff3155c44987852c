package reaper

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"linkvault/internal/service"
)

// Reaper periodically removes time-expired vault entries regardless of client
// traffic. It runs alongside live request handling; the repository's guarded
// updates keep a purge racing an access consistent, and an entry that
// disappears between scan and purge counts as already done.
type Reaper struct {
	vaults   service.VaultService
	interval time.Duration

	purged      prometheus.Counter
	purgeErrors prometheus.Counter

	stop chan struct{}
	done chan struct{}
	enc  *json.Encoder
}

// New creates a reaper over the given vault lifecycle engine.
func New(vaults service.VaultService, interval time.Duration, reg prometheus.Registerer) (*Reaper, error) {
	r := &Reaper{
		vaults:   vaults,
		interval: interval,
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vaults_purged_total",
			Help: "Total number of expired vault entries purged by the reaper.",
		}),
		purgeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vault_purge_errors_total",
			Help: "Total number of reaper purge attempts that failed.",
		}),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		enc:  json.NewEncoder(os.Stdout),
	}

	if reg != nil {
		if err := reg.Register(r.purged); err != nil {
			return nil, err
		}
		if err := reg.Register(r.purgeErrors); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Start launches the background loop: one pass immediately, then one per
// interval until Stop is called.
func (r *Reaper) Start() {
	go func() {
		defer close(r.done)

		r.RunOnce(context.Background())

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				r.RunOnce(context.Background())
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight pass to finish.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}

// RunOnce scans for expired entries and purges each. A failure on one entry
// must not abort the batch; it is logged and the pass continues.
func (r *Reaper) RunOnce(ctx context.Context) {
	now := time.Now().UTC()

	expired, err := r.vaults.ExpiredBefore(ctx, now)
	if err != nil {
		r.logJSON(map[string]any{
			"component": "reaper",
			"event":     "reaper_scan_failed",
			"level":     "error",
			"error":     err.Error(),
		})
		return
	}
	if len(expired) == 0 {
		return
	}

	purged := 0
	for i := range expired {
		entry := &expired[i]
		if err := r.vaults.Purge(ctx, entry); err != nil {
			r.purgeErrors.Inc()
			r.logJSON(map[string]any{
				"component": "reaper",
				"event":     "vault_purge_failed",
				"level":     "error",
				"vault_id":  entry.ID,
				"error":     err.Error(),
			})
			continue
		}
		r.purged.Inc()
		purged++
	}

	r.logJSON(map[string]any{
		"component": "reaper",
		"event":     "reaper_pass",
		"level":     "info",
		"expired":   len(expired),
		"purged":    purged,
	})
}

func (r *Reaper) logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if err := r.enc.Encode(data); err != nil {
		log.Printf("failed to encode reaper log: %v", err)
	}
}
