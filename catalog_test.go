package moneybook

import (
	"errors"
	"testing"
	"time"
)

func TestAddProduct(t *testing.T) {
	s := NewStore()
	_, _, subID := newTestHierarchy(t, s)

	rec, err := s.AddProduct(Record{"name": "Coffee beans", "subcategoryId": subID, "defaultAmount": dec("12.50")})
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}
	if rec.ID() != "PRD_001" {
		t.Errorf("id = %q, want PRD_001", rec.ID())
	}

	if _, err := s.AddProduct(Record{"name": "Broken", "defaultAmount": dec("-1")}); !errors.Is(err, ErrValidation) {
		t.Errorf("AddProduct() with negative defaultAmount error = %v, want ErrValidation", err)
	}

	// The product blocks its subcategory from deletion.
	if err := s.DeleteSubcategory(subID); !errors.Is(err, ErrConstraint) {
		t.Errorf("DeleteSubcategory() error = %v, want ErrConstraint", err)
	}
}

func TestPayeesAndPayers(t *testing.T) {
	s, checking, savings := newTestStore(t)

	payee, err := s.AddPayee(Record{"name": "Grocer"})
	if err != nil {
		t.Fatalf("AddPayee() error = %v", err)
	}
	payer, err := s.AddPayer(Record{"name": "Employer"})
	if err != nil {
		t.Fatalf("AddPayer() error = %v", err)
	}
	if payee.ID() != "PAYEE_001" || payer.ID() != "PAYER_001" {
		t.Errorf("ids = %s/%s, want PAYEE_001/PAYER_001", payee.ID(), payer.ID())
	}
	if got := payee.Str("description"); got != "" {
		t.Errorf("description = %q, want empty default", got)
	}

	if _, err := s.AddTransaction(Record{
		"debitAccountId":  checking,
		"creditAccountId": savings,
		"amount":          dec("7"),
		"payeeId":         payee.ID(),
		"payerId":         payer.ID(),
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if err := s.DeletePayee(payee.ID()); !errors.Is(err, ErrConstraint) {
		t.Errorf("DeletePayee() error = %v, want ErrConstraint", err)
	}
	if err := s.DeletePayer(payer.ID()); !errors.Is(err, ErrConstraint) {
		t.Errorf("DeletePayer() error = %v, want ErrConstraint", err)
	}
}

func TestAddTag(t *testing.T) {
	s := NewStore()
	rec, err := s.AddTag(Record{"name": "vacation"})
	if err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	if got := rec.Str("color"); got != "#808080" {
		t.Errorf("color = %q, want default #808080", got)
	}

	rec, err = s.AddTag(Record{"name": "urgent", "color": "#ff0000"})
	if err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}
	if got := rec.Str("color"); got != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", got)
	}

	if _, err := s.AddTag(Record{}); !errors.Is(err, ErrValidation) {
		t.Errorf("AddTag() without name error = %v, want ErrValidation", err)
	}
}

func TestTodos(t *testing.T) {
	s := NewStore()

	rec, err := s.AddTodo(Record{"description": "Pay rent", "dueDate": "2025-9-1"})
	if err != nil {
		t.Fatalf("AddTodo() error = %v", err)
	}
	if got := rec.Str("dueDate"); got != "2025-09-01" {
		t.Errorf("dueDate = %q, want canonical 2025-09-01", got)
	}
	if rec.Bool("completed") {
		t.Errorf("completed = true, want false default")
	}
	if _, err := time.Parse(DatetimeFormat, rec.Str("createdAt")); err != nil {
		t.Errorf("createdAt %q is not a timestamp: %v", rec.Str("createdAt"), err)
	}

	done, err := s.CompleteTodo(rec.ID())
	if err != nil {
		t.Fatalf("CompleteTodo() error = %v", err)
	}
	if !done.Bool("completed") {
		t.Errorf("completed = false after CompleteTodo")
	}

	if _, err := s.AddTodo(Record{"description": "Call bank", "dueDate": "soon"}); !errors.Is(err, ErrValidation) {
		t.Errorf("AddTodo() with bad due date error = %v, want ErrValidation", err)
	}
	if _, err := s.AddTodo(Record{}); !errors.Is(err, ErrValidation) {
		t.Errorf("AddTodo() without description error = %v, want ErrValidation", err)
	}

	// Due date is optional.
	if _, err := s.AddTodo(Record{"description": "Someday"}); err != nil {
		t.Errorf("AddTodo() without dueDate error = %v", err)
	}

	if err := s.DeleteTodo(rec.ID()); err != nil {
		t.Errorf("DeleteTodo() error = %v", err)
	}
}
