package seed

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/okian/paddock/pkg/logger"
)

// submitForms posts forms to path with a pool of workers and tallies the
// outcomes.
func submitForms(ctx context.Context, cfg *Config, client *HTTPClient, path string, forms []url.Values) Tally {
	log := logger.Get().Named("seed")
	log.Info(ctx, "submitting forms",
		logger.String("path", path),
		logger.Int("count", len(forms)),
		logger.Int("workers", cfg.Workers))

	var submitted, succeeded, invalid, conflicts, failed int64

	formChan := make(chan url.Values, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for form := range formChan {
				outcome := submitSingleForm(ctx, cfg, client, path, form)
				atomic.AddInt64(&submitted, 1)
				switch outcome {
				case outcomeSuccess:
					atomic.AddInt64(&succeeded, 1)
				case outcomeInvalid:
					atomic.AddInt64(&invalid, 1)
				case outcomeConflict:
					atomic.AddInt64(&conflicts, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}

	go func() {
		defer close(formChan)
		for _, f := range forms {
			select {
			case <-ctx.Done():
				return
			case formChan <- f:
			}
		}
	}()

	wg.Wait()

	t := Tally{
		Submitted: int(atomic.LoadInt64(&submitted)),
		Succeeded: int(atomic.LoadInt64(&succeeded)),
		Invalid:   int(atomic.LoadInt64(&invalid)),
		Conflicts: int(atomic.LoadInt64(&conflicts)),
		Failed:    int(atomic.LoadInt64(&failed)),
	}
	log.Info(ctx, "submission completed",
		logger.String("path", path),
		logger.Int("succeeded", t.Succeeded),
		logger.Int("invalid", t.Invalid),
		logger.Int("conflicts", t.Conflicts),
		logger.Int("failed", t.Failed))
	return t
}

// submitSingleForm posts one form and classifies the response.
func submitSingleForm(ctx context.Context, cfg *Config, client *HTTPClient, path string, form url.Values) string {
	status, env, err := client.PostForm(ctx, path, form)
	outcome := outcomeFailed
	switch {
	case err != nil:
	case status == http.StatusOK && env.Success:
		outcome = outcomeSuccess
	case status == http.StatusUnprocessableEntity:
		outcome = outcomeInvalid
	case status == http.StatusConflict:
		outcome = outcomeConflict
	}
	if outcome != outcomeSuccess && cfg.Verbose {
		fields := []logger.Field{
			logger.String("path", path),
			logger.Int("status", status),
			logger.String("message", env.Message),
			logger.Any("errors", env.Errors),
		}
		if err != nil {
			fields = append(fields, logger.Error(err))
		}
		logger.Get().Named("seed").Warn(ctx, "form rejected", fields...)
	}
	return outcome
}
