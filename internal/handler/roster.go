// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hotelplan/hotelplan/internal/repository"
	"github.com/hotelplan/hotelplan/pkg/errors"
	"github.com/hotelplan/hotelplan/pkg/model"
)

// RosterHandler 员工名单处理器
// 数据库未接入时只提供示例名单
type RosterHandler struct {
	staffRepo *repository.StaffRepository
}

// NewRosterHandler 创建员工名单处理器
func NewRosterHandler(staffRepo *repository.StaffRepository) *RosterHandler {
	return &RosterHandler{staffRepo: staffRepo}
}

// Sample 返回一个合规的15人示例团队
func (h *RosterHandler) Sample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	propertyID := uuid.New()
	if raw := r.URL.Query().Get("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的酒店ID格式"))
			return
		}
		propertyID = id
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"property_id": propertyID,
		"staff":       model.SampleRoster(propertyID),
	})
}

// Staff 员工集合端点：GET列表 / POST创建
func (h *RosterHandler) Staff(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.listStaff(w, r)
	case http.MethodPost:
		h.createStaff(w, r)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/POST方法"))
	}
}

// StaffByID 单个员工端点：GET / PUT / DELETE
func (h *RosterHandler) StaffByID(w http.ResponseWriter, r *http.Request) {
	if !h.requireRepo(w) {
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/roster/staff/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getStaff(w, r, id)
	case http.MethodPut:
		h.updateStaff(w, r, id)
	case http.MethodDelete:
		h.deleteStaff(w, r, id)
	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET/PUT/DELETE方法"))
	}
}

func (h *RosterHandler) listStaff(w http.ResponseWriter, r *http.Request) {
	filter := repository.DefaultListFilter()

	if raw := r.URL.Query().Get("property_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的酒店ID格式"))
			return
		}
		filter = filter.WithPropertyID(id)
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter = filter.WithLimit(limit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			filter = filter.WithOffset(offset)
		}
	}
	if role := r.URL.Query().Get("role"); role != "" {
		filter.Extra = map[string]interface{}{"role": role}
	}

	members, total, err := h.staffRepo.List(r.Context(), filter)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工列表失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"staff": members,
		"total": total,
	})
}

func (h *RosterHandler) createStaff(w http.ResponseWriter, r *http.Request) {
	var in StaffInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	propertyID := r.URL.Query().Get("property_id")
	roster, appErr := buildRoster(propertyID, []StaffInput{in})
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	staff := roster[0]
	if err := h.staffRepo.Create(r.Context(), staff); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
		return
	}

	respondJSON(w, http.StatusCreated, staff)
}

func (h *RosterHandler) getStaff(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	staff, err := h.staffRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
		return
	}
	if staff == nil {
		respondError(w, errors.NotFound("员工", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, staff)
}

func (h *RosterHandler) updateStaff(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var in StaffInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	in.ID = id.String()

	roster, appErr := buildRoster("", []StaffInput{in})
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	staff := roster[0]
	if err := h.staffRepo.Update(r.Context(), staff); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新员工失败"))
		return
	}

	respondJSON(w, http.StatusOK, staff)
}

func (h *RosterHandler) deleteStaff(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.staffRepo.Delete(r.Context(), id); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": id})
}

// requireRepo 数据库未接入时拒绝请求
func (h *RosterHandler) requireRepo(w http.ResponseWriter) bool {
	if h.staffRepo == nil {
		respondError(w, errors.New(errors.CodeInternal, "数据库未接入，员工管理不可用"))
		return false
	}
	return true
}
