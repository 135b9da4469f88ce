package domain

import "time"

// LoanPeriod is the default time between loan date and due date.
const LoanPeriod = 14 * 24 * time.Hour

type Loan struct {
	ID         string
	BookID     string
	MemberID   string
	LoanDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Returned   bool
}

// NewLoan builds an active loan. A nil loanDate means now and a nil dueDate
// means loanDate plus LoanPeriod.
func NewLoan(bookID, memberID string, loanDate, dueDate *time.Time, now time.Time) Loan {
	ld := now
	if loanDate != nil {
		ld = *loanDate
	}
	dd := ld.Add(LoanPeriod)
	if dueDate != nil {
		dd = *dueDate
	}
	return Loan{
		BookID:   bookID,
		MemberID: memberID,
		LoanDate: ld,
		DueDate:  dd,
	}
}

// IsOverdue reports whether an unreturned loan is past its due date.
func (l Loan) IsOverdue(now time.Time) bool {
	return !l.Returned && now.After(l.DueDate)
}

// MarkReturned closes the loan at now.
func (l *Loan) MarkReturned(now time.Time) {
	l.Returned = true
	l.ReturnDate = &now
}
