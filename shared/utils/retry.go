package utils

import (
	"context"
	"time"
)

// Retry ejecuta fn hasta 'attempts' veces esperando 'delay' entre intentos.
// fn recibe el número de intento (1-based). attempts < 1 se trata como 1.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}

		select {
		case <-time.After(delay):
			// espera antes del siguiente intento
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
