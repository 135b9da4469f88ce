package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/library/internal/adapter/storage"
	"github.com/rl1809/library/internal/config"
	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/core/service"
)

const totalRequests = 50

// Fires concurrent loans at a single book. The availability check and the
// loan write are not atomic, so more than one loan can succeed.
func main() {
	ctx := context.Background()

	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	defer closeStore()

	books := service.NewBookService(store)
	loans := service.NewLoanService(store, books)

	book, err := books.Create(ctx, domain.BookDraft{Title: "Stress Test", Author: "Load Generator"})
	if err != nil {
		log.Fatalf("failed to create book: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var unavailableCount atomic.Int32
	var errorCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(memberID int) {
			defer wg.Done()

			_, err := loans.Lend(ctx, service.LendRequest{
				BookID:   book.ID,
				MemberID: fmt.Sprintf("member-%d", memberID),
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrBookUnavailable):
				unavailableCount.Add(1)
			default:
				errorCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	active, err := store.ListWhereEquals(ctx, domain.LoansCollection, domain.FieldBookID, book.ID)
	if err != nil {
		log.Fatalf("failed to list loans: %v", err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Store:            %s\n", cfg.Store)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Lent:             %d\n", successCount.Load())
	fmt.Printf("Unavailable:      %d\n", unavailableCount.Load())
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Loans stored:     %d\n", len(active))
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if len(active) > 1 {
		fmt.Printf("RACE: %d loans exist for one copy\n", len(active))
	} else {
		fmt.Println("No double lending observed in this run")
	}
}
