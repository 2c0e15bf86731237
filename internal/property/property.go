// Package property 提供酒店维度的隔离支持
package property

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPropertyNotFound = errors.New("酒店不存在")
	ErrInvalidProperty  = errors.New("无效的酒店")
	ErrPropertyDisabled = errors.New("酒店已禁用")
)

// Property 酒店
type Property struct {
	ID        uuid.UUID        `json:"id"`
	Code      string           `json:"code"`   // 酒店编码
	Name      string           `json:"name"`   // 酒店名称
	Status    string           `json:"status"` // active/suspended/closed
	Settings  PropertySettings `json:"settings"`
	CreatedAt time.Time        `json:"created_at"`
	ClosedAt  *time.Time       `json:"closed_at,omitempty"`
}

// PropertySettings 酒店配置
type PropertySettings struct {
	MaxStaff      int      `json:"max_staff"`           // 最大员工数
	Features      []string `json:"features"`            // 启用的功能
	APIRateLimit  int      `json:"api_rate_limit"`      // API速率限制
	DataRetention int      `json:"data_retention_days"` // 数据保留天数
}

// IsActive 检查酒店是否在营
func (p *Property) IsActive() bool {
	if p.Status != "active" {
		return false
	}
	if p.ClosedAt != nil && p.ClosedAt.Before(time.Now()) {
		return false
	}
	return true
}

// HasFeature 检查酒店是否启用某功能
func (p *Property) HasFeature(feature string) bool {
	for _, f := range p.Settings.Features {
		if f == feature || f == "*" {
			return true
		}
	}
	return false
}

// PropertyManager 酒店管理器
type PropertyManager struct {
	properties map[string]*Property // code -> property
	mu         sync.RWMutex
}

// NewPropertyManager 创建酒店管理器
func NewPropertyManager() *PropertyManager {
	return &PropertyManager{
		properties: make(map[string]*Property),
	}
}

// Register 注册酒店
func (m *PropertyManager) Register(property *Property) error {
	if property == nil || property.Code == "" {
		return ErrInvalidProperty
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.properties[property.Code] = property
	return nil
}

// Get 获取酒店
func (m *PropertyManager) Get(code string) (*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	property, exists := m.properties[code]
	if !exists {
		return nil, ErrPropertyNotFound
	}

	if !property.IsActive() {
		return nil, ErrPropertyDisabled
	}

	return property, nil
}

// GetByID 通过ID获取酒店
func (m *PropertyManager) GetByID(id uuid.UUID) (*Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, property := range m.properties {
		if property.ID == id {
			if !property.IsActive() {
				return nil, ErrPropertyDisabled
			}
			return property, nil
		}
	}

	return nil, ErrPropertyNotFound
}

// List 列出所有酒店
func (m *PropertyManager) List() []*Property {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Property, 0, len(m.properties))
	for _, p := range m.properties {
		result = append(result, p)
	}
	return result
}

// Remove 移除酒店
func (m *PropertyManager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.properties, code)
}

// propertyContextKey 酒店上下文键
type propertyContextKey struct{}

// WithProperty 将酒店添加到上下文
func WithProperty(ctx context.Context, property *Property) context.Context {
	return context.WithValue(ctx, propertyContextKey{}, property)
}

// FromContext 从上下文获取酒店
func FromContext(ctx context.Context) (*Property, bool) {
	property, ok := ctx.Value(propertyContextKey{}).(*Property)
	return property, ok
}

// DefaultPropertySettings 默认酒店配置
func DefaultPropertySettings() PropertySettings {
	return PropertySettings{
		MaxStaff:      100,
		Features:      []string{"planning", "validation", "stats"},
		APIRateLimit:  100,
		DataRetention: 365,
	}
}

// CreateDefaultProperty 创建默认酒店（开发测试用）
func CreateDefaultProperty() *Property {
	return &Property{
		ID:        uuid.New(),
		Code:      "default",
		Name:      "默认酒店",
		Status:    "active",
		Settings:  DefaultPropertySettings(),
		CreatedAt: time.Now(),
	}
}
