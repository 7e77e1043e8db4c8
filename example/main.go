package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/lotalloc/pkg/application/services/allocation"
	"github.com/vsinha/lotalloc/pkg/application/services/report"
	"github.com/vsinha/lotalloc/pkg/domain/entities"
	"github.com/vsinha/lotalloc/pkg/infrastructure/repositories/memory"
)

func main() {
	// Create the lot pool
	pool := memory.NewLotRepository(4)
	if err := setupDairyStock(pool); err != nil {
		fmt.Printf("❌ Failed to load stock: %v\n", err)
		return
	}

	snapshot, err := pool.Snapshot()
	if err != nil {
		fmt.Printf("❌ Failed to snapshot stock: %v\n", err)
		return
	}

	// Two orders against the same SKU: one inside the promotion window, one after it
	orders, err := buildOrders()
	if err != nil {
		fmt.Printf("❌ Invalid order: %v\n", err)
		return
	}

	fmt.Println("🥛 Allocating Milk 1L orders at WH1...")
	for _, o := range orders {
		fmt.Printf("  Order %d: %d units on %s\n", o.Index+1, o.RequestedQty, o.OrderedDate.Format("2006-01-02"))
	}
	fmt.Println()

	engine := allocation.NewEngine(allocation.DefaultOptions(), nil)
	result, err := engine.Allocate(pool, orders)
	if err != nil {
		fmt.Printf("❌ Allocation failed: %v\n", err)
		return
	}

	// Show what each order line received
	fmt.Println("📦 Order Lines:")
	for _, f := range result.Fulfillments {
		fmt.Printf("  Order %d: %d of %d allocated (%s)\n",
			f.Order.Index+1, f.AllocatedQty, f.Order.RequestedQty, f.Status)
		for _, d := range f.Draws {
			promo := ""
			if d.Promotion {
				promo = " [promotion]"
			}
			fmt.Printf("    lot %s: %d -> %d%s\n", d.LotNo, d.OnHandBefore, d.OnHandAfter, promo)
		}
	}
	fmt.Println()

	// Show the ledger; a lot drawn twice keeps only its first event
	fmt.Println("📝 Ledger:")
	for _, ev := range result.Ledger {
		fmt.Printf("  %s: requested %d, allocated %d, %d -> %d\n",
			ev.LotNo, ev.RequestedAtAllocation, ev.AllocatedQty, ev.OnHandBefore, ev.OnHandAfter)
	}
	fmt.Println()

	// Compose the report rows
	rows := report.NewComposer().Compose(snapshot, result.Lots, result.Ledger, orders).Rows
	fmt.Println("📊 Report:")
	for _, row := range rows {
		fmt.Printf("  %-3s %-10s %-9s %s  requested=%d allocated=%d remaining=%d ordered=%s\n",
			row.LotNo, row.Remarks, row.Freshness, row.MFGDate,
			row.Requested, row.Allocated, row.RemainingInHand, row.OrderedDate)
	}

	if short := result.ShortOrders(); len(short) > 0 {
		fmt.Println()
		fmt.Println("⚠️  Unfilled Order Lines:")
		for _, f := range short {
			fmt.Printf("  %v\n", f.Err())
		}
	}
}

func setupDairyStock(pool *memory.LotRepository) error {
	lots := []struct {
		lotNo, remarks string
		mfg            time.Time
		freshness      string
		onHand         entities.Quantity
	}{
		{"A", "Promotion", date(2024, 1, 1), "0.30", 50},
		{"B", "Normal", date(2024, 1, 5), "0.455", 100},
		{"C", "Normal", date(2024, 1, 20), "0.62", 40},
	}

	for _, l := range lots {
		lot, err := entities.NewInventoryLot(
			l.lotNo, "Milk 1L", "WH1", l.remarks,
			l.mfg, l.mfg.AddDate(0, 6, 0),
			decimal.RequireFromString(l.freshness),
			l.onHand, l.onHand,
		)
		if err != nil {
			return err
		}
		if err := pool.AddLot(lot); err != nil {
			return err
		}
	}
	return nil
}

func buildOrders() ([]entities.OrderLine, error) {
	specs := []struct {
		qty  entities.Quantity
		date time.Time
	}{
		{60, date(2024, 2, 10)},
		{120, date(2024, 2, 20)},
	}

	orders := make([]entities.OrderLine, 0, len(specs))
	for i, s := range specs {
		order, err := entities.NewOrderLine("Milk 1L", "WH1", s.qty, s.date)
		if err != nil {
			return nil, err
		}
		order.Index = i
		orders = append(orders, *order)
	}
	return orders, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
