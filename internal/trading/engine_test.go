package trading_test

import (
	"errors"
	"sync"
	"testing"

	"trading_platform/internal/db"
	"trading_platform/internal/domain"
	"trading_platform/internal/ledger"
	"trading_platform/internal/trading"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buyOrder(symbol, amount, price string) trading.Order {
	return trading.Order{
		Symbol: symbol,
		Amount: decimal.RequireFromString(amount),
		Price:  decimal.RequireFromString(price),
	}
}

func TestOrderValidate(t *testing.T) {
	cases := []struct {
		name  string
		order trading.Order
		valid bool
	}{
		{"valid", buyOrder("BTC", "0.01", "50000"), true},
		{"empty symbol", buyOrder("", "0.01", "50000"), false},
		{"zero amount", buyOrder("BTC", "0", "50000"), false},
		{"negative amount", buyOrder("BTC", "-1", "50000"), false},
		{"zero price", buyOrder("BTC", "0.01", "0"), false},
		{"negative price", buyOrder("BTC", "0.01", "-5"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.order.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, trading.ErrInvalidOrder)
			}
		})
	}
}

func TestOrderTotalValue(t *testing.T) {
	order := buyOrder("BTC", "0.01", "50000")
	assert.True(t, order.TotalValue().Equal(decimal.NewFromInt(500)))
}

func TestExecuteBuy_Success(t *testing.T) {
	gdb := db.SetupTestDB(t)
	defer db.CleanupTestDB(t, gdb)

	userID := db.CreateTestUser(t, gdb, "buyer", decimal.NewFromInt(1000))
	engine := trading.NewEngine(gdb)

	trade, err := engine.ExecuteBuy(userID, buyOrder("BTC", "0.01", "50000"))
	require.NoError(t, err)
	require.NotNil(t, trade)
	assert.Equal(t, domain.TradeTypeBuy, trade.Type)
	assert.True(t, trade.TotalValue.Equal(decimal.NewFromInt(500)))

	// Balance decreases by exactly amount*price.
	balance, err := ledger.GetBalance(gdb, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(500)), "expected 500, got %s", balance)

	// Exactly one trade row exists.
	var count int64
	require.NoError(t, gdb.Model(&domain.Trade{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestExecuteBuy_InsufficientFunds(t *testing.T) {
	gdb := db.SetupTestDB(t)
	defer db.CleanupTestDB(t, gdb)

	userID := db.CreateTestUser(t, gdb, "poorbuyer", decimal.NewFromInt(100))
	engine := trading.NewEngine(gdb)

	_, err := engine.ExecuteBuy(userID, buyOrder("BTC", "1", "200"))
	require.Error(t, err)

	var insufficient *ledger.InsufficientFundsError
	require.True(t, errors.As(err, &insufficient))
	assert.True(t, insufficient.Required.Equal(decimal.NewFromInt(200)))
	assert.True(t, insufficient.Available.Equal(decimal.NewFromInt(100)))

	// No partial writes: balance unchanged and no trade row.
	balance, err := ledger.GetBalance(gdb, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))

	var count int64
	require.NoError(t, gdb.Model(&domain.Trade{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestExecuteBuy_UserNotFound(t *testing.T) {
	gdb := db.SetupTestDB(t)
	defer db.CleanupTestDB(t, gdb)

	engine := trading.NewEngine(gdb)
	_, err := engine.ExecuteBuy(999999, buyOrder("BTC", "0.01", "50000"))
	assert.ErrorIs(t, err, ledger.ErrUserNotFound)
}

func TestExecuteSell_CreditsBalance(t *testing.T) {
	gdb := db.SetupTestDB(t)
	defer db.CleanupTestDB(t, gdb)

	userID := db.CreateTestUser(t, gdb, "seller", decimal.NewFromInt(100))
	engine := trading.NewEngine(gdb)

	// Sells carry no holdings check: they always credit once valid.
	trade, err := engine.ExecuteSell(userID, buyOrder("ETH", "2", "1500"))
	require.NoError(t, err)
	assert.Equal(t, domain.TradeTypeSell, trade.Type)
	assert.True(t, trade.TotalValue.Equal(decimal.NewFromInt(3000)))

	balance, err := ledger.GetBalance(gdb, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(3100)), "expected 3100, got %s", balance)
}

func TestExecuteBuy_Concurrent_NeverOverdraws(t *testing.T) {
	gdb := db.SetupTestDB(t)
	defer db.CleanupTestDB(t, gdb)

	// Balance covers exactly 2 of the 10 attempted buys.
	userID := db.CreateTestUser(t, gdb, "concurrentbuyer", decimal.NewFromInt(250))
	engine := trading.NewEngine(gdb)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ExecuteBuy(userID, buyOrder("BTC", "1", "100"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else {
			var insufficient *ledger.InsufficientFundsError
			require.True(t, errors.As(err, &insufficient), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 2, successes)

	balance, err := ledger.GetBalance(gdb, userID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(50)),
		"race detected: expected 50, got %s", balance)
	assert.False(t, balance.IsNegative())

	var count int64
	require.NoError(t, gdb.Model(&domain.Trade{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, successes, count)
}

func TestListPositions_NewestFirstAndFiltered(t *testing.T) {
	gdb := db.SetupTestDB(t)
	defer db.CleanupTestDB(t, gdb)

	userID := db.CreateTestUser(t, gdb, "lister", decimal.NewFromInt(10000))
	engine := trading.NewEngine(gdb)

	_, err := engine.ExecuteBuy(userID, buyOrder("BTC", "0.01", "50000"))
	require.NoError(t, err)
	_, err = engine.ExecuteSell(userID, buyOrder("ETH", "1", "2000"))
	require.NoError(t, err)

	trades, err := engine.ListPositions(userID, "")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "ETH", trades[0].Symbol) // Newest first
	assert.Equal(t, "BTC", trades[1].Symbol)

	// Repeated pure reads return identical results.
	again, err := engine.ListPositions(userID, "")
	require.NoError(t, err)
	assert.Equal(t, trades, again)

	// The status filter matches the database-default status only.
	open, err := engine.ListPositions(userID, "open")
	require.NoError(t, err)
	assert.Len(t, open, 2)
	closed, err := engine.ListPositions(userID, "closed")
	require.NoError(t, err)
	assert.Len(t, closed, 0)
}
