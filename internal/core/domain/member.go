package domain

import "time"

type Member struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Address      *string
	IDCardNumber *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MemberDraft struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	Address      *string
	IDCardNumber *string
}

type MemberPatch struct {
	FirstName    Optional[string]
	LastName     Optional[string]
	Email        Optional[string]
	Phone        Optional[*string]
	Address      Optional[*string]
	IDCardNumber Optional[*string]
}

func NewMember(d MemberDraft, now time.Time) Member {
	return Member{
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Phone:        d.Phone,
		Address:      d.Address,
		IDCardNumber: d.IDCardNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (m *Member) Apply(p MemberPatch) {
	if v, ok := p.FirstName.Get(); ok {
		m.FirstName = v
	}
	if v, ok := p.LastName.Get(); ok {
		m.LastName = v
	}
	if v, ok := p.Email.Get(); ok {
		m.Email = v
	}
	if v, ok := p.Phone.Get(); ok {
		m.Phone = v
	}
	if v, ok := p.Address.Get(); ok {
		m.Address = v
	}
	if v, ok := p.IDCardNumber.Get(); ok {
		m.IDCardNumber = v
	}
}
