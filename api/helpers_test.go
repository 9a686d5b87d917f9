package api

import (
	"strconv"

	"github.com/rs/zerolog"
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
