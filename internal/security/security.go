// Package security 提供API密钥管理与请求频率限制
package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidAPIKey     = errors.New("无效的API密钥")
	ErrExpiredAPIKey     = errors.New("API密钥已过期")
	ErrRateLimitExceeded = errors.New("请求频率超限")
	ErrInvalidSignature  = errors.New("无效的签名")
)

// APIKey 单个酒店作用域的API密钥
type APIKey struct {
	Key        string     `json:"key"`
	Secret     string     `json:"-"` // 不序列化
	PropertyID string     `json:"property_id"`
	Name       string     `json:"name"`
	Scopes     []string   `json:"scopes"` // 权限范围
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Enabled    bool       `json:"enabled"`
}

// IsValid 检查密钥是否有效
func (k *APIKey) IsValid() bool {
	if !k.Enabled {
		return false
	}
	if k.ExpiresAt != nil && k.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}

// HasScope 检查密钥是否有某权限
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}

// APIKeyManager 按酒店作用域管理API密钥
type APIKeyManager struct {
	keys       map[string]*APIKey  // key -> APIKey
	byProperty map[string][]string // propertyID -> keys
	mu         sync.RWMutex
}

// NewAPIKeyManager 创建密钥管理器
func NewAPIKeyManager() *APIKeyManager {
	return &APIKeyManager{
		keys:       make(map[string]*APIKey),
		byProperty: make(map[string][]string),
	}
}

// GenerateKey 为一个酒店生成新密钥
func (m *APIKeyManager) GenerateKey(propertyID, name string, scopes []string, expiresIn *time.Duration) (*APIKey, error) {
	key, err := generateRandomString(32)
	if err != nil {
		return nil, err
	}

	secret, err := generateRandomString(64)
	if err != nil {
		return nil, err
	}

	apiKey := &APIKey{
		Key:        "hp_" + key,
		Secret:     secret,
		PropertyID: propertyID,
		Name:       name,
		Scopes:     scopes,
		CreatedAt:  time.Now(),
		Enabled:    true,
	}

	if expiresIn != nil {
		expiresAt := time.Now().Add(*expiresIn)
		apiKey.ExpiresAt = &expiresAt
	}

	m.mu.Lock()
	m.keys[apiKey.Key] = apiKey
	m.byProperty[propertyID] = append(m.byProperty[propertyID], apiKey.Key)
	m.mu.Unlock()

	return apiKey, nil
}

// Validate 验证密钥
func (m *APIKeyManager) Validate(key string) (*APIKey, error) {
	m.mu.RLock()
	apiKey, exists := m.keys[key]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrInvalidAPIKey
	}

	if !apiKey.IsValid() {
		return nil, ErrExpiredAPIKey
	}

	return apiKey, nil
}

// ListByProperty 列出一个酒店名下的所有密钥
func (m *APIKeyManager) ListByProperty(propertyID string) []*APIKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := m.byProperty[propertyID]
	out := make([]*APIKey, 0, len(keys))
	for _, k := range keys {
		if apiKey, exists := m.keys[k]; exists {
			out = append(out, apiKey)
		}
	}
	return out
}

// Revoke 撤销密钥
func (m *APIKeyManager) Revoke(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if apiKey, exists := m.keys[key]; exists {
		apiKey.Enabled = false
	}
}

// RevokeProperty 撤销一个酒店名下的所有密钥（酒店下线时使用）
func (m *APIKeyManager) RevokeProperty(propertyID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	revoked := 0
	for _, k := range m.byProperty[propertyID] {
		if apiKey, exists := m.keys[k]; exists && apiKey.Enabled {
			apiKey.Enabled = false
			revoked++
		}
	}
	return revoked
}

// Delete 删除密钥
func (m *APIKeyManager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	apiKey, exists := m.keys[key]
	if !exists {
		return
	}
	delete(m.keys, key)

	keys := m.byProperty[apiKey.PropertyID]
	for i, k := range keys {
		if k == key {
			m.byProperty[apiKey.PropertyID] = append(keys[:i], keys[i+1:]...)
			break
		}
	}
}

// RateLimiter 滑动窗口频率限制器
type RateLimiter struct {
	requests map[string][]time.Time // key -> request timestamps
	limit    int                    // 时间窗口内最大请求数
	window   time.Duration          // 时间窗口
	mu       sync.Mutex
}

// NewRateLimiter 创建频率限制器
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()

	return rl
}

// Allow 检查是否允许请求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.window)

	reqs := rl.requests[key]
	valid := reqs[:0]
	for _, t := range reqs {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// cleanup 定期清理不再活跃的客户端
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		windowStart := time.Now().Add(-rl.window)
		for key, reqs := range rl.requests {
			active := false
			for _, t := range reqs {
				if t.After(windowStart) {
					active = true
					break
				}
			}
			if !active {
				delete(rl.requests, key)
			}
		}
		rl.mu.Unlock()
	}
}

// SignatureVerifier 回调签名验证器
type SignatureVerifier struct {
	secretKey string
}

// NewSignatureVerifier 创建签名验证器
func NewSignatureVerifier(secretKey string) *SignatureVerifier {
	return &SignatureVerifier{secretKey: secretKey}
}

// GenerateSignature 生成签名
func (v *SignatureVerifier) GenerateSignature(payload string, timestamp int64) string {
	message := payload + ":" + strconv.FormatInt(timestamp, 10)
	h := hmac.New(sha256.New, []byte(v.secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify 验证签名与时间戳新鲜度
func (v *SignatureVerifier) Verify(payload, signature string, timestamp int64, maxAge time.Duration) bool {
	requestTime := time.Unix(timestamp, 0)
	if time.Since(requestTime) > maxAge {
		return false
	}

	expectedSig := v.GenerateSignature(payload, timestamp)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}

// ExtractAPIKey 从请求中提取API密钥
// 依次尝试 Authorization Bearer、X-API-Key 头、api_key 查询参数
func ExtractAPIKey(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}

	if key := r.URL.Query().Get("api_key"); key != "" {
		return key
	}

	return ""
}

// generateRandomString 生成随机字符串
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length], nil
}
