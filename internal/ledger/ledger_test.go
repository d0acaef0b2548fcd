package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/ledger"
	mock_ledger "github.com/simnotice/simnotice/internal/ledger/mocks"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type decimalMatcher struct{ want decimal.Decimal }

func decEq(s string) gomock.Matcher { return decimalMatcher{want: dec(s)} }

func (m decimalMatcher) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string { return fmt.Sprintf("equals %s", m.want) }

func TestService_Record(t *testing.T) {
	tests := []struct {
		name     string
		tx       domain.Transaction
		insert   bool
		storeErr error
		wantErr  error
	}{
		{
			name:   "successful deduction",
			tx:     domain.Transaction{SimID: 1, Kind: domain.KindDeduct, Amount: dec("20"), PreviousBalance: dec("100"), NewBalance: dec("80")},
			insert: true,
		},
		{
			name:   "failed deduction keeps balance",
			tx:     domain.Transaction{SimID: 1, Kind: domain.KindDeduct, Amount: dec("20"), PreviousBalance: dec("5"), NewBalance: dec("5")},
			insert: true,
		},
		{
			name:   "recharge",
			tx:     domain.Transaction{SimID: 1, Kind: domain.KindAdd, Amount: dec("0.1"), PreviousBalance: dec("0.2"), NewBalance: dec("0.3")},
			insert: true,
		},
		{
			name:    "balance mismatch",
			tx:      domain.Transaction{SimID: 1, Kind: domain.KindDeduct, Amount: dec("20"), PreviousBalance: dec("100"), NewBalance: dec("70")},
			wantErr: ledger.ErrBalanceMismatch,
		},
		{
			name:    "negative amount",
			tx:      domain.Transaction{SimID: 1, Kind: domain.KindDeduct, Amount: dec("-1"), PreviousBalance: dec("1"), NewBalance: dec("1")},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name:    "unknown kind",
			tx:      domain.Transaction{SimID: 1, Kind: "refund", Amount: dec("1"), PreviousBalance: dec("1"), NewBalance: dec("2")},
			wantErr: ledger.ErrUnknownKind,
		},
		{
			name:     "card missing in store",
			tx:       domain.Transaction{SimID: 7, Kind: domain.KindDeduct, Amount: dec("1"), PreviousBalance: dec("1"), NewBalance: dec("0")},
			insert:   true,
			storeErr: fmt.Errorf("insert transaction: %w", repository.ErrCardNotFound),
			wantErr:  ledger.ErrUnknownCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			txns := mock_ledger.NewMockTransactionStore(ctrl)
			if tt.insert {
				txns.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
						if tt.storeErr != nil {
							return tt.storeErr
						}
						tx.ID = 11
						return nil
					})
			}

			svc := ledger.NewService(txns, mock_ledger.NewMockCardStore(ctrl), sl.Discard())
			got, err := svc.Record(context.Background(), tt.tx)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(11), got.ID)
		})
	}
}

func TestService_Recharge(t *testing.T) {
	card := &domain.SimCard{ID: 3, PhoneNumber: "13800138000", Balance: dec("9.99"), MonthlyFee: dec("19.99")}

	t.Run("credits and records", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		txns := mock_ledger.NewMockTransactionStore(ctrl)
		cards := mock_ledger.NewMockCardStore(ctrl)

		gomock.InOrder(
			cards.EXPECT().GetByID(gomock.Any(), int64(3)).Return(card, nil),
			cards.EXPECT().UpdateBalance(gomock.Any(), int64(3), decEq("30.00")).Return(true, nil),
			txns.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
				assert.Equal(t, domain.KindAdd, tx.Kind)
				assert.Equal(t, ledger.DefaultRechargeDescription, tx.Description)
				assert.True(t, tx.PreviousBalance.Equal(dec("9.99")))
				assert.True(t, tx.NewBalance.Equal(dec("30")))
				tx.ID = 1
				return nil
			}),
		)

		svc := ledger.NewService(txns, cards, sl.Discard())
		tx, err := svc.Recharge(context.Background(), 3, dec("20.01"), " ")
		require.NoError(t, err)
		assert.Equal(t, int64(1), tx.ID)
	})

	t.Run("rejects non positive amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := ledger.NewService(mock_ledger.NewMockTransactionStore(ctrl), mock_ledger.NewMockCardStore(ctrl), sl.Discard())
		_, err := svc.Recharge(context.Background(), 3, dec("0"), "")
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

		_, err = svc.Recharge(context.Background(), 3, dec("0.004"), "")
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})

	t.Run("records the rounded amount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		txns := mock_ledger.NewMockTransactionStore(ctrl)
		cards := mock_ledger.NewMockCardStore(ctrl)

		cards.EXPECT().GetByID(gomock.Any(), int64(3)).Return(card, nil)
		cards.EXPECT().UpdateBalance(gomock.Any(), int64(3), decEq("10.00")).Return(true, nil)
		txns.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *domain.Transaction) error {
			assert.True(t, tx.Amount.Equal(dec("0.01")), tx.Amount.String())
			assert.True(t, tx.NewBalance.Equal(dec("10")))
			return nil
		})

		svc := ledger.NewService(txns, cards, sl.Discard())
		_, err := svc.Recharge(context.Background(), 3, dec("0.005"), "")
		require.NoError(t, err)
	})

	t.Run("unknown card", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cards := mock_ledger.NewMockCardStore(ctrl)
		cards.EXPECT().GetByID(gomock.Any(), int64(9)).Return(nil, repository.ErrCardNotFound)

		svc := ledger.NewService(mock_ledger.NewMockTransactionStore(ctrl), cards, sl.Discard())
		_, err := svc.Recharge(context.Background(), 9, dec("10"), "")
		assert.ErrorIs(t, err, ledger.ErrUnknownCard)
	})

	t.Run("update fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		cards := mock_ledger.NewMockCardStore(ctrl)
		cards.EXPECT().GetByID(gomock.Any(), int64(3)).Return(card, nil)
		cards.EXPECT().UpdateBalance(gomock.Any(), int64(3), gomock.Any()).Return(false, errors.New("disk full"))

		svc := ledger.NewService(mock_ledger.NewMockTransactionStore(ctrl), cards, sl.Discard())
		_, err := svc.Recharge(context.Background(), 3, dec("10"), "top up")
		assert.EqualError(t, err, "ledger.Recharge: disk full")
	})
}
