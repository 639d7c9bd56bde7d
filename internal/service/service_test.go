package service

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/Arthurk12/racha-ai/internal/auth"
	"github.com/Arthurk12/racha-ai/internal/models"
	"github.com/Arthurk12/racha-ai/internal/storage"
	"github.com/Arthurk12/racha-ai/internal/storage/sqlite"
)

func newTestServices(t *testing.T) (*GroupService, *ExpenseService) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwt := auth.NewJWTManager("test-secret", time.Hour)
	groups := NewGroupService(store, jwt)
	return groups, NewExpenseService(store, groups)
}

// newTestGroup creates a group with an admin and n extra members named
// "user1".."userN", all with PIN 1234.
func newTestGroup(t *testing.T, groups *GroupService, n int) (*models.Group, []*models.User) {
	t.Helper()
	ctx := context.Background()

	group, admin, _, err := groups.CreateGroup(ctx, "Trip", "admin", "1234")
	if err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	users := []*models.User{admin}
	names := []string{"user1", "user2", "user3", "user4"}
	for i := 0; i < n; i++ {
		u, _, err := groups.AddUser(ctx, group.ID, names[i], "1234")
		if err != nil {
			t.Fatalf("failed to add user %s: %v", names[i], err)
		}
		users = append(users, u)
	}
	return group, users
}

func TestCreateGroup(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()

	group, admin, token, err := groups.CreateGroup(ctx, "Ski Trip", "alice", "4321")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" || admin.ID == "" || token == "" {
		t.Error("expected non-empty group, admin and token")
	}
	if !admin.IsAdmin {
		t.Error("group creator should be admin")
	}

	got, members, err := groups.GetGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Name != "Ski Trip" {
		t.Errorf("expected name 'Ski Trip', got %q", got.Name)
	}
	if len(members) != 1 {
		t.Errorf("expected 1 member, got %d", len(members))
	}
}

func TestCreateGroupValidation(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		groupName string
		adminName string
		pin       string
		wantErr   error
	}{
		{"empty group name", "", "alice", "1234", ErrInvalidInput},
		{"empty admin name", "Trip", "", "1234", ErrInvalidInput},
		{"short PIN", "Trip", "alice", "12", auth.ErrWeakPIN},
		{"non-digit PIN", "Trip", "alice", "12ab", auth.ErrWeakPIN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := groups.CreateGroup(ctx, tt.groupName, tt.adminName, tt.pin)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAddUserNameTaken(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()
	group, _ := newTestGroup(t, groups, 1)

	// Same name with different case is still taken.
	if _, _, err := groups.AddUser(ctx, group.ID, "USER1", "1234"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)

	_, token, err := groups.Login(ctx, group.ID, users[1].ID, "1234")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Error("expected a session token")
	}

	if _, _, err := groups.Login(ctx, group.ID, users[1].ID, "9999"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong PIN: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := groups.Login(ctx, group.ID, "no-such-user", "1234"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResetAndUpdatePIN(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)
	admin, member := users[0], users[1]

	// Member cannot reset another user's PIN.
	if err := groups.ResetPIN(ctx, group.ID, member.ID, admin.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	if err := groups.ResetPIN(ctx, group.ID, admin.ID, member.ID); err != nil {
		t.Fatalf("ResetPIN failed: %v", err)
	}
	if _, _, err := groups.Login(ctx, group.ID, member.ID, models.DefaultPIN); err != nil {
		t.Errorf("login with default PIN after reset failed: %v", err)
	}

	if err := groups.UpdatePIN(ctx, group.ID, member.ID, member.ID, "5678"); err != nil {
		t.Fatalf("UpdatePIN failed: %v", err)
	}
	if _, _, err := groups.Login(ctx, group.ID, member.ID, "5678"); err != nil {
		t.Errorf("login with updated PIN failed: %v", err)
	}
}

func TestRemoveUserKeepsExpenseHistory(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 2)
	admin, u1, u2 := users[0], users[1], users[2]

	_, err := expenses.AddExpense(ctx, group.ID, u1.ID, ExpenseInput{
		Description:    "dinner",
		Amount:         90,
		PaidByID:       u1.ID,
		ParticipantIDs: []string{admin.ID, u1.ID, u2.ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	if err := groups.RemoveUser(ctx, group.ID, admin.ID, u2.ID); err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}

	// The expense survives; the removed user's share no longer credits the
	// payer, so u1 is owed only admin's share.
	balances, transfers, err := expenses.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 members after removal, got %d", len(balances))
	}
	for _, b := range balances {
		var want float64
		switch b.UserID {
		case u1.ID:
			want = 30
		case admin.ID:
			want = -30
		}
		if math.Abs(b.Balance-want) > 1e-9 {
			t.Errorf("balance of %s: expected %.2f, got %.2f", b.Name, want, b.Balance)
		}
	}
	if len(transfers) != 1 || transfers[0].DebtorID != admin.ID || transfers[0].CreditorID != u1.ID {
		t.Errorf("unexpected transfers: %+v", transfers)
	}
}

func TestAddExpensePermissions(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)
	admin, member := users[0], users[1]

	// Member cannot record an expense paid by someone else.
	_, err := expenses.AddExpense(ctx, group.ID, member.ID, ExpenseInput{
		Description:    "taxi",
		Amount:         20,
		PaidByID:       admin.ID,
		ParticipantIDs: []string{admin.ID, member.ID},
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	// Admin can record on anyone's behalf.
	if _, err := expenses.AddExpense(ctx, group.ID, admin.ID, ExpenseInput{
		Description:    "taxi",
		Amount:         20,
		PaidByID:       member.ID,
		ParticipantIDs: []string{admin.ID, member.ID},
	}); err != nil {
		t.Errorf("admin AddExpense on behalf of member failed: %v", err)
	}
}

func TestAddExpenseValidation(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 0)
	admin := users[0]

	tests := []struct {
		name string
		in   ExpenseInput
	}{
		{"empty description", ExpenseInput{Amount: 10, PaidByID: admin.ID, ParticipantIDs: []string{admin.ID}}},
		{"zero amount", ExpenseInput{Description: "x", Amount: 0, PaidByID: admin.ID, ParticipantIDs: []string{admin.ID}}},
		{"negative amount", ExpenseInput{Description: "x", Amount: -5, PaidByID: admin.ID, ParticipantIDs: []string{admin.ID}}},
		{"no participants", ExpenseInput{Description: "x", Amount: 10, PaidByID: admin.ID}},
		{"bad date", ExpenseInput{Description: "x", Amount: 10, PaidByID: admin.ID, ParticipantIDs: []string{admin.ID}, Date: "31/12/2025"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := expenses.AddExpense(ctx, group.ID, admin.ID, tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestExpenseDateNormalizedToNoonUTC(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 0)
	admin := users[0]

	expense, err := expenses.AddExpense(ctx, group.ID, admin.ID, ExpenseInput{
		Description:    "hotel",
		Amount:         200,
		PaidByID:       admin.ID,
		ParticipantIDs: []string{admin.ID},
		Date:           "2025-06-15",
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	want := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	if !expense.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, expense.Date)
	}
}

func TestUpdateAndRemoveExpensePermissions(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 2)
	admin, u1, u2 := users[0], users[1], users[2]

	expense, err := expenses.AddExpense(ctx, group.ID, u1.ID, ExpenseInput{
		Description:    "groceries",
		Amount:         60,
		PaidByID:       u1.ID,
		ParticipantIDs: []string{u1.ID, u2.ID},
	})
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	in := ExpenseInput{Description: "groceries", Amount: 80, PaidByID: u1.ID, ParticipantIDs: []string{u1.ID, u2.ID}}

	// A non-payer non-admin can neither edit nor delete.
	if _, err := expenses.UpdateExpense(ctx, group.ID, u2.ID, expense.ID, in); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("update by non-payer: expected ErrPermissionDenied, got %v", err)
	}
	if err := expenses.RemoveExpense(ctx, group.ID, u2.ID, expense.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("remove by non-payer: expected ErrPermissionDenied, got %v", err)
	}

	// The payer can edit.
	updated, err := expenses.UpdateExpense(ctx, group.ID, u1.ID, expense.ID, in)
	if err != nil {
		t.Fatalf("UpdateExpense by payer failed: %v", err)
	}
	if updated.Amount != 80 {
		t.Errorf("expected amount 80, got %v", updated.Amount)
	}

	// An admin can delete.
	if err := expenses.RemoveExpense(ctx, group.ID, admin.ID, expense.ID); err != nil {
		t.Fatalf("RemoveExpense by admin failed: %v", err)
	}
	if _, err := expenses.ListExpenses(ctx, group.ID); err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
}

func TestBalancesAndTransfers(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 2)
	a, b, c := users[0], users[1], users[2]

	if _, err := expenses.AddExpense(ctx, group.ID, a.ID, ExpenseInput{
		Description:    "dinner",
		Amount:         90,
		PaidByID:       a.ID,
		ParticipantIDs: []string{a.ID, b.ID, c.ID},
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	balances, transfers, err := expenses.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}

	want := map[string]float64{a.ID: 60, b.ID: -30, c.ID: -30}
	for _, ub := range balances {
		if math.Abs(ub.Balance-want[ub.UserID]) > 1e-9 {
			t.Errorf("balance of %s: expected %.2f, got %.2f", ub.Name, want[ub.UserID], ub.Balance)
		}
	}

	if len(transfers) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(transfers))
	}
	for _, tr := range transfers {
		if tr.CreditorID != a.ID {
			t.Errorf("expected all transfers to credit %s, got %+v", a.Name, tr)
		}
		if math.Abs(tr.Amount-30) > 1e-9 {
			t.Errorf("expected transfer of 30, got %.2f", tr.Amount)
		}
		if tr.DebtorName == "" || tr.CreditorName == "" {
			t.Error("expected transfer names to be resolved")
		}
	}
}

func TestBreakdown(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)
	a, b := users[0], users[1]

	if _, err := expenses.AddExpense(ctx, group.ID, a.ID, ExpenseInput{
		Description:    "lunch",
		Amount:         40,
		PaidByID:       a.ID,
		ParticipantIDs: []string{a.ID, b.ID},
		Date:           "2025-03-10",
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	items, err := expenses.Breakdown(ctx, group.ID, a.ID, b.ID)
	if err != nil {
		t.Fatalf("Breakdown failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if !items[0].IsPayer {
		t.Error("expected IsPayer=true from the payer's perspective")
	}
	if math.Abs(items[0].OweAmount-20) > 1e-9 {
		t.Errorf("expected owe amount 20, got %.2f", items[0].OweAmount)
	}

	// Same pair in reverse order flips the perspective.
	reversed, err := expenses.Breakdown(ctx, group.ID, b.ID, a.ID)
	if err != nil {
		t.Fatalf("Breakdown (reversed) failed: %v", err)
	}
	if len(reversed) != 1 || reversed[0].IsPayer {
		t.Errorf("expected IsPayer=false from the debtor's perspective, got %+v", reversed)
	}

	if _, err := expenses.Breakdown(ctx, group.ID, a.ID, a.ID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("same user twice: expected ErrInvalidInput, got %v", err)
	}
}

func TestSettleRoundTrip(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)
	a, b := users[0], users[1]

	if _, err := expenses.AddExpense(ctx, group.ID, a.ID, ExpenseInput{
		Description:    "tickets",
		Amount:         100,
		PaidByID:       a.ID,
		ParticipantIDs: []string{a.ID, b.ID},
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	settlement, err := expenses.Settle(ctx, group.ID, b.ID, b.ID, a.ID)
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !settlement.IsSettlement {
		t.Error("settlement expense should be flagged")
	}
	if math.Abs(settlement.Amount-50) > 1e-9 {
		t.Errorf("expected settlement of 50, got %.2f", settlement.Amount)
	}
	if settlement.PaidByID != b.ID || len(settlement.ParticipantIDs) != 1 || settlement.ParticipantIDs[0] != a.ID {
		t.Errorf("settlement should be paid by debtor to creditor only: %+v", settlement)
	}

	// After settling, the pair owes nothing and no transfers remain.
	_, transfers, err := expenses.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("expected no transfers after settling, got %+v", transfers)
	}

	// Settling again is rejected.
	if _, err := expenses.Settle(ctx, group.ID, b.ID, b.ID, a.ID); !errors.Is(err, ErrNothingToSettle) {
		t.Errorf("expected ErrNothingToSettle, got %v", err)
	}
}

func TestSettlePermissions(t *testing.T) {
	groups, expenses := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 2)
	admin, b, c := users[0], users[1], users[2]

	if _, err := expenses.AddExpense(ctx, group.ID, admin.ID, ExpenseInput{
		Description:    "fuel",
		Amount:         60,
		PaidByID:       admin.ID,
		ParticipantIDs: []string{admin.ID, b.ID, c.ID},
	}); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	// c cannot settle b's debt.
	if _, err := expenses.Settle(ctx, group.ID, c.ID, b.ID, admin.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}

	// The admin can settle on b's behalf.
	if _, err := expenses.Settle(ctx, group.ID, admin.ID, b.ID, admin.ID); err != nil {
		t.Errorf("admin Settle on behalf of member failed: %v", err)
	}
}

func TestToggleFinished(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)
	member := users[1]

	toggled, err := groups.ToggleFinished(ctx, group.ID, member.ID, member.ID)
	if err != nil {
		t.Fatalf("ToggleFinished failed: %v", err)
	}
	if !toggled.HasFinishedAdding {
		t.Error("expected HasFinishedAdding=true after first toggle")
	}

	toggled, err = groups.ToggleFinished(ctx, group.ID, member.ID, member.ID)
	if err != nil {
		t.Fatalf("ToggleFinished failed: %v", err)
	}
	if toggled.HasFinishedAdding {
		t.Error("expected HasFinishedAdding=false after second toggle")
	}
}

func TestDeleteGroupAdminOnly(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()
	group, users := newTestGroup(t, groups, 1)
	admin, member := users[0], users[1]

	if err := groups.DeleteGroup(ctx, group.ID, member.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
	if err := groups.DeleteGroup(ctx, group.ID, admin.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, _, err := groups.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPurgeInactive(t *testing.T) {
	groups, _ := newTestServices(t)
	ctx := context.Background()
	group, _ := newTestGroup(t, groups, 0)

	// Nothing is older than an hour yet.
	n, err := groups.PurgeInactive(ctx, time.Hour)
	if err != nil {
		t.Fatalf("PurgeInactive failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 purged, got %d", n)
	}

	// A negative retention window puts the cutoff in the future, so every
	// group is stale regardless of timestamp granularity.
	n, err = groups.PurgeInactive(ctx, -2*time.Second)
	if err != nil {
		t.Fatalf("PurgeInactive failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
	if _, _, err := groups.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after purge, got %v", err)
	}
}
