package services

import (
	"testing"

	"crowdbond/internal/models"
	"crowdbond/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "")

		user, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == 0 {
			t.Fatal("expected non-zero user ID")
		}
		if user.Role != models.RoleInvestor {
			t.Errorf("expected investor role, got %s", user.Role)
		}
		if user.Wallet == nil {
			t.Fatal("expected wallet to be created with the user")
		}
		if user.Wallet.Balance != 0 {
			t.Errorf("expected zero wallet balance, got %d", user.Wallet.Balance)
		}
		if user.Password == "password123" {
			t.Error("expected password to be hashed")
		}
	})

	t.Run("admin_email_gets_admin_role", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "Admin@Example.com")

		user, err := svc.CreateUser("admin@example.com", "password123", "Ada", "Min")
		testutil.AssertNoError(t, err)
		if user.Role != models.RoleAdmin {
			t.Errorf("expected admin role, got %s", user.Role)
		}

		other, err := svc.CreateUser("bob@example.com", "password123", "Bob", "Jones")
		testutil.AssertNoError(t, err)
		if other.Role != models.RoleInvestor {
			t.Errorf("expected investor role, got %s", other.Role)
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "")

		_, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("ALICE@example.com", "password456", "Alice", "Clone")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "")

		_, err := svc.CreateUser("", "password123", "Alice", "Smith")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.CreateUser("alice@example.com", "", "Alice", "Smith")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "")

		created, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		user, err := svc.GetUserByEmail("Alice@Example.com")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %d, got %d", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "")

		_, err := svc.GetUserByEmail("ghost@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("inactive_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db, "")

		user, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)
		db.Model(user).Update("is_active", false)

		_, err = svc.GetUserByEmail("alice@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db, "")

	user, err := svc.CreateUser("alice@example.com", "password123", "Alice", "Smith")
	testutil.AssertNoError(t, err)

	if !svc.VerifyPassword(user, "password123") {
		t.Error("expected correct password to verify")
	}
	if svc.VerifyPassword(user, "wrong-password") {
		t.Error("expected wrong password to fail")
	}
}
