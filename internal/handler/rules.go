// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/hotelplan/hotelplan/internal/rules"
	"github.com/hotelplan/hotelplan/pkg/errors"
)

// RulesHandler 规则目录处理器
type RulesHandler struct{}

// NewRulesHandler 创建规则目录处理器
func NewRulesHandler() *RulesHandler {
	return &RulesHandler{}
}

// Library 返回完整的排班规则目录
func (h *RulesHandler) Library(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	respondJSON(w, http.StatusOK, rules.LibraryResponse{Library: rules.GetLibrary()})
}
