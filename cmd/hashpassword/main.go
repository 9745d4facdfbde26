// cmd/hashpassword/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/pkg/auth"
)

// Prints the bcrypt hash to put in DEMO_PASSWORD_HASH
func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	log := logrus.New()
	if flag.NArg() != 1 {
		log.Fatal("Usage: hashpassword [-cost 12] <password>")
	}
	password := flag.Arg(0)

	passwordManager := auth.NewPasswordManager(*cost)
	if err := passwordManager.ValidatePassword(password); err != nil {
		log.WithError(err).Fatal("Password rejected")
	}

	hash, err := passwordManager.HashPassword(password)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash password")
	}

	if err := passwordManager.VerifyPassword(password, hash); err != nil {
		log.WithError(err).Fatal("Hash verification failed")
	}

	fmt.Fprintln(os.Stdout, hash)
}
