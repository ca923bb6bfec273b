package tools

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
)

// OfferInformation searches the tenant's product offers by keyword.
type OfferInformation struct {
	store store.Store
}

func NewOfferInformation(s store.Store) *OfferInformation { return &OfferInformation{store: s} }

func (t *OfferInformation) Name() string { return "get_offer_information" }
func (t *OfferInformation) Description() string {
	return "Search current product offers by keyword"
}

type offerInformationArgs struct {
	Keyword string `json:"keyword"`
}

func (t *OfferInformation) Execute(ctx context.Context, call Call) (any, error) {
	var args offerInformationArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	offers, err := t.store.Offers().SearchOffers(ctx, call.TenantID, args.Keyword)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, map[string]string{
			"name":        o.Name,
			"category":    o.Category,
			"description": o.Description,
		})
	}
	return map[string]any{"offers": out}, nil
}

// ServiceRequest raises a support ticket for the caller.
type ServiceRequest struct {
	store store.Store
}

func NewServiceRequest(s store.Store) *ServiceRequest { return &ServiceRequest{store: s} }

func (t *ServiceRequest) Name() string { return "service_request" }
func (t *ServiceRequest) Description() string {
	return "Raise a service request (card replacement, dispute, address change)"
}

type serviceRequestArgs struct {
	Kind    string `json:"kind"`
	Details string `json:"details"`
}

func (t *ServiceRequest) Execute(ctx context.Context, call Call) (any, error) {
	var args serviceRequestArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sr := domain.ServiceRequest{
		ID:        idx.New().String(),
		TenantID:  call.TenantID,
		UserID:    call.UserID,
		Kind:      args.Kind,
		Details:   args.Details,
		Status:    domain.ServiceRequestOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.store.ServiceRequests().CreateServiceRequest(ctx, sr); err != nil {
		return nil, err
	}

	return map[string]any{
		"request_id": sr.ID,
		"status":     sr.Status,
	}, nil
}

// BranchLocation lists branch locations, optionally filtered by city.
type BranchLocation struct {
	store store.Store
}

func NewBranchLocation(s store.Store) *BranchLocation { return &BranchLocation{store: s} }

func (t *BranchLocation) Name() string { return "get_branch_location" }
func (t *BranchLocation) Description() string {
	return "List branch locations, optionally filtered by city"
}

type branchLocationArgs struct {
	City string `json:"city"`
}

func (t *BranchLocation) Execute(ctx context.Context, call Call) (any, error) {
	var args branchLocationArgs
	if err := decodeArgs(call.Args, &args); err != nil {
		return nil, err
	}

	branches, err := t.store.Branches().ListBranches(ctx, args.City)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]string, 0, len(branches))
	for _, b := range branches {
		out = append(out, map[string]string{
			"name":    b.Name,
			"address": b.Address,
			"city":    b.City,
		})
	}
	return map[string]any{"branches": out}, nil
}
