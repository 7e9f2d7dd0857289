package utils

import (
	"fmt"
	"math/rand/v2"
	"unicode"
)

// maxCodeAttempts bounds the collision-retry loop; with 9 million suffixes
// per letter pair this only trips if the table is pathologically full.
const maxCodeAttempts = 100

func codeLetter(s string) byte {
	for _, r := range s {
		up := unicode.ToUpper(r)
		if up >= 'A' && up <= 'Z' {
			return byte(up)
		}
		break
	}
	return 'X'
}

// GenerateTrackingCode builds the public tracking code: the first letter of
// the customer name, the first letter of the vehicle make, and a random
// 7-digit number. It retries until exists reports the code unused.
func GenerateTrackingCode(name, carMake string, exists func(code string) (bool, error)) (string, error) {
	prefix := string([]byte{codeLetter(name), codeLetter(carMake)})

	for i := 0; i < maxCodeAttempts; i++ {
		code := fmt.Sprintf("%s%07d", prefix, 1000000+rand.IntN(9000000))
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free tracking code for prefix %s", prefix)
}
