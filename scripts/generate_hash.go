// +build ignore

// generate_hash.go — утилита для генерации Argon2id хеша секретного ключа
// Callback API. Запуск: go run scripts/generate_hash.go ваш_секрет
//
// Результат вставьте в .env как CALLBACK_SECRET_HASH.
package main

import (
	"fmt"
	"os"

	"make-them-rich/internal/callback"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/generate_hash.go <секрет>")
		os.Exit(1)
	}

	hash, err := callback.HashSecret(os.Args[1])
	if err != nil {
		fmt.Printf("Ошибка: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Хеш секрета (вставьте в .env как CALLBACK_SECRET_HASH):")
	fmt.Println(hash)
}
