package auth

import "strings"

// Role API 客户端角色
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleScanner Role = "scanner"
	RoleViewer  Role = "viewer"
)

// Permission 内置权限, 格式 资源:动作
type Permission string

const (
	PermProjectView   Permission = "project:view"
	PermProjectCreate Permission = "project:create"
	PermProjectUpdate Permission = "project:update"
	PermProjectDelete Permission = "project:delete"

	PermProfileView   Permission = "profile:view"
	PermProfileCreate Permission = "profile:create"
	PermProfileUpdate Permission = "profile:update"
	PermProfileDelete Permission = "profile:delete"

	PermScanView  Permission = "scan:view"
	PermScanWrite Permission = "scan:write"

	PermReportView Permission = "report:view"
)

// RolePermissions 每个角色拥有的权限集合
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		"*",
	},
	// 扫描进程: 读取项目与配置, 写扫描结果
	RoleScanner: {
		"*:view",
		"scan:*",
	},
	RoleViewer: {
		"*:view",
	},
}

// IsValidRole 是否为内置角色
func IsValidRole(role string) bool {
	_, ok := RolePermissions[Role(role)]
	return ok
}

// Allow 判断一组角色是否包含所需权限，支持通配符
func Allow(roles []string, need Permission) bool {
	for _, p := range collectPermissions(roles) {
		if match(p, need) {
			return true
		}
	}
	return false
}

func collectPermissions(roles []string) []Permission {
	perms := make([]Permission, 0)
	for _, r := range roles {
		if ps, ok := RolePermissions[Role(r)]; ok {
			perms = append(perms, ps...)
		}
	}
	return perms
}

// match 中间段的 * 匹配一段, 末尾的 * 匹配剩余所有段
func match(have, need Permission) bool {
	if have == need {
		return true
	}

	haveParts := strings.Split(string(have), ":")
	needParts := strings.Split(string(need), ":")

	for i, part := range haveParts {
		last := i == len(haveParts)-1
		if part == "*" && last {
			return i < len(needParts)
		}
		if i >= len(needParts) {
			return false
		}
		if part != "*" && part != needParts[i] {
			return false
		}
	}

	return len(haveParts) == len(needParts)
}
