package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakeladder/internal/storage"
	"github.com/mcoot/snakeladder/internal/storage/storagetest"
)

// Set SNL_TEST_MONGODB_URI to run these against a live server.
const testURIEnv = "SNL_TEST_MONGODB_URI"

type StorageSuite struct {
	storagetest.Suite
}

// throwaway drops its database on Close so each test starts clean
type throwaway struct {
	*Storage
}

func (t throwaway) Close() error {
	_ = t.db.Drop(context.Background())
	return t.Storage.Close()
}

func TestStorageSuite(t *testing.T) {
	uri := os.Getenv(testURIEnv)
	if uri == "" {
		t.Skipf("%s not set", testURIEnv)
	}

	s := new(StorageSuite)
	n := 0
	s.NewStorage = func() storage.Storage {
		n++
		cfg := DefaultConfig()
		cfg.URI = uri
		cfg.Database = fmt.Sprintf("snl_test_%d_%d", time.Now().UnixNano(), n)

		st, err := New(cfg)
		s.Require().NoError(err)
		return throwaway{st}
	}
	suite.Run(t, s)
}
