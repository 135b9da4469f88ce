package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/library/internal/core/domain"
	"github.com/rl1809/library/internal/port"
)

type MemberService struct {
	store port.DocumentStore
	now   func() time.Time
}

func NewMemberService(store port.DocumentStore, opts ...Option) *MemberService {
	o := buildOptions(opts)
	return &MemberService{store: store, now: o.now}
}

func (s *MemberService) Create(ctx context.Context, draft domain.MemberDraft) (domain.Member, error) {
	member := domain.NewMember(draft, s.now())

	id, err := s.store.Insert(ctx, domain.MembersCollection, domain.EncodeMember(member))
	if err != nil {
		return domain.Member{}, fmt.Errorf("insert member: %w", err)
	}
	member.ID = id
	return member, nil
}

func (s *MemberService) Get(ctx context.Context, id string) (*domain.Member, error) {
	doc, ok, err := s.store.Get(ctx, domain.MembersCollection, id)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if !ok {
		return nil, nil
	}

	member, err := domain.DecodeMember(doc, id, s.now())
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *MemberService) List(ctx context.Context) ([]domain.Member, error) {
	docs, err := s.store.List(ctx, domain.MembersCollection)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return decodeAll(docs, s.now(), domain.DecodeMember)
}

func (s *MemberService) Update(ctx context.Context, member domain.Member, patch domain.MemberPatch) (domain.Member, error) {
	member.Apply(patch)
	member.UpdatedAt = s.now()

	if err := s.store.Update(ctx, domain.MembersCollection, member.ID, domain.EncodeMemberPatch(patch, member.UpdatedAt)); err != nil {
		return domain.Member{}, fmt.Errorf("update member: %w", err)
	}
	return member, nil
}

func (s *MemberService) Delete(ctx context.Context, member domain.Member) error {
	if err := s.store.Delete(ctx, domain.MembersCollection, member.ID); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}
