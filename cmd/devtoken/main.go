// Command devtoken 为本地联调签发 Access Token。
// 生产环境的 Token 由统一身份系统签发，密钥与 issuer 需与服务端配置一致。
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"research-approval/backend/config"
	"research-approval/backend/pkg/jwt"
)

var roles = map[string]bool{
	jwt.RoleStudent: true,
	jwt.RoleAdviser: true,
	jwt.RolePanel:   true,
	jwt.RoleAdmin:   true,
}

func main() {
	_ = godotenv.Load()

	var (
		userID     string
		role       string
		configPath string
	)
	flag.StringVar(&userID, "user", "", "用户 ID（必填）")
	flag.StringVar(&role, "role", jwt.RoleStudent, "角色: student | adviser | panel | admin")
	flag.StringVar(&configPath, "config", os.Getenv("THESIS_CONFIG"), "配置文件路径")
	flag.Parse()

	if userID == "" || !roles[role] {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(userID, role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
