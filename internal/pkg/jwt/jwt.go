package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quality-scanner/internal/pkg/config"
	"quality-scanner/pkg/constants"
	pkgErrors "quality-scanner/pkg/errors"
)

// ClientClaims API 客户端 Claims (扫描进程, 看板等)
type ClientClaims struct {
	Client string `json:"client"`
	Role   string `json:"role"`
	Type   string `json:"type"` // access
	jwt.RegisteredClaims
}

// GenerateAccessToken 生成访问Token, AccessTokenExpire 为 0 时不设置过期时间
func GenerateAccessToken(cfg config.JWTConfig, client, role string) (string, error) {
	now := time.Now()
	claims := ClientClaims{
		Client: client,
		Role:   role,
		Type:   constants.JWTTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  client,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if cfg.AccessTokenExpire > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(time.Duration(cfg.AccessTokenExpire) * time.Second))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken 解析Token
func ParseToken(cfg config.JWTConfig, tokenString string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClientClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, pkgErrors.ErrTokenExpired
		}
		return nil, pkgErrors.Wrap(pkgErrors.CodeUnauthorized, "解析Token失败", err)
	}

	if claims, ok := token.Claims.(*ClientClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, pkgErrors.ErrInvalidToken
}

// ValidateToken 验证Token有效性
func ValidateToken(cfg config.JWTConfig, tokenString string) (*ClientClaims, error) {
	claims, err := ParseToken(cfg, tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Type != constants.JWTTypeAccess {
		return nil, pkgErrors.New(pkgErrors.CodeUnauthorized, "无效的Token类型")
	}

	return claims, nil
}
