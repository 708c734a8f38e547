package service

import "context"

type testTxRepos struct {
	documents DocumentRepository
}

func (t *testTxRepos) Documents() DocumentRepository {
	return t.documents
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}
