package cmd

import (
	"context"
	"log"
	"strconv"

	"github.com/frahmantamala/inventory-management/internal/borrow"
	"github.com/frahmantamala/inventory-management/internal/core/events"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Inspect and replay domain events against the registered handlers`,
}

var replayEventCmd = &cobra.Command{
	Use:   "replay-borrow [request-id]",
	Short: "Replay the event for a borrow request",
	Long:  `Re-publish the event matching a borrow request's status so its notification goes out again`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatalf("invalid request id %q", args[0])
		}
		replayBorrowEvent(id)
	},
}

var statusEvents = map[borrow.Status]string{
	borrow.StatusPending:  events.EventTypeBorrowRequested,
	borrow.StatusApproved: events.EventTypeBorrowApproved,
	borrow.StatusRejected: events.EventTypeBorrowRejected,
}

func replayBorrowEvent(id int64) {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		log.Fatalf("failed to init dependencies: %v", err)
	}
	defer deps.Close()

	logger := deps.Logger

	row, err := deps.Repos.Borrow.GetByID(ctx, id)
	if err != nil {
		log.Fatalf("failed to load borrow request %d: %v", id, err)
	}
	if row == nil {
		log.Fatalf("borrow request %d not found", id)
	}

	req := borrow.FromRow(row)
	eventType, ok := statusEvents[req.Status]
	if !ok {
		logger.Warn("no event for borrow status", "request_id", id, "status", req.Status)
		return
	}

	event := events.NewBorrowEvent(eventType, req.ID, req.UserID, req.ProductID, req.ProductName, req.Purpose, string(req.Status))

	logger.Info("replaying borrow event", "event_type", eventType, "event_id", event.EventID(), "request_id", id)

	if err := deps.EventBus.PublishSync(ctx, event); err != nil {
		logger.Error("failed to replay event", "error", err)
		return
	}

	logger.Info("borrow event replayed successfully")
}

func init() {
	eventCmd.AddCommand(replayEventCmd)

	rootCmd.AddCommand(eventCmd)
}
