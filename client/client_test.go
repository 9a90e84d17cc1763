package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/near/borsh-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fermata-systems/near-client/config"
	"github.com/fermata-systems/near-client/keys"
	"github.com/fermata-systems/near-client/signer"
	"github.com/fermata-systems/near-client/transaction"
	"github.com/fermata-systems/near-client/types"
)

// fakeNode is an in-process RPC node covering the methods the pipeline
// touches: access key queries, block headers and transaction broadcast.
type fakeNode struct {
	t *testing.T

	mu sync.Mutex
	// chainNonces is the on-chain nonce per public key string.
	chainNonces map[string]uint64
	// submissions records every broadcast signed transaction, decoded.
	submissions []signedEnvelope
	// rejectNonces counts down: while positive, send_tx answers with an
	// invalid-nonce rejection.
	rejectNonces int
	accessKeyQueries int
	blockQueries     int
}

// signedEnvelope mirrors the signed transaction wire layout for decoding
// what the pipeline actually broadcast.
type signedEnvelope struct {
	Transaction transaction.Transaction
	Signature   keys.Signature
}

func newFakeNode(t *testing.T) *fakeNode {
	return &fakeNode{t: t, chainNonces: make(map[string]uint64)}
}

type rpcRequest struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))

	n.mu.Lock()
	defer n.mu.Unlock()

	switch req.Method {
	case "query":
		n.handleQuery(w, req.Params)
	case "block":
		n.blockQueries++
		blockHash := types.HashBytes([]byte("recent block"))
		n.reply(w, fmt.Sprintf(`{"author":"val.test","header":{"height":42,"hash":%q,"prev_hash":%q,"epoch_id":%q,"timestamp":1}}`,
			blockHash, blockHash, blockHash))
	case "send_tx":
		n.handleSendTx(w, req.Params)
	default:
		n.t.Errorf("unexpected rpc method %q", req.Method)
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (n *fakeNode) handleQuery(w http.ResponseWriter, params json.RawMessage) {
	var q struct {
		RequestType string `json:"request_type"`
		AccountID   string `json:"account_id"`
		PublicKey   string `json:"public_key"`
	}
	require.NoError(n.t, json.Unmarshal(params, &q))

	switch q.RequestType {
	case "view_access_key":
		n.accessKeyQueries++
		n.reply(w, fmt.Sprintf(`{"nonce":%d,"permission":"FullAccess"}`, n.chainNonces[q.PublicKey]))
	case "view_account":
		n.reply(w, `{"amount":"2000000000000000000000000","locked":"0","code_hash":"11111111111111111111111111111111","storage_usage":100,"storage_paid_at":0}`)
	default:
		n.t.Errorf("unexpected query request_type %q", q.RequestType)
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (n *fakeNode) handleSendTx(w http.ResponseWriter, params json.RawMessage) {
	var p struct {
		SignedTxBase64 string `json:"signed_tx_base64"`
	}
	require.NoError(n.t, json.Unmarshal(params, &p))

	raw, err := base64.StdEncoding.DecodeString(p.SignedTxBase64)
	require.NoError(n.t, err)
	var envelope signedEnvelope
	require.NoError(n.t, borsh.Deserialize(&envelope, raw))

	if n.rejectNonces > 0 {
		n.rejectNonces--
		n.replyError(w, "INVALID_TRANSACTION",
			`{"TxExecutionError":{"InvalidTxError":{"InvalidNonce":{"tx_nonce":1,"ak_nonce":99}}}}`)
		return
	}

	n.submissions = append(n.submissions, envelope)
	n.chainNonces[envelope.Transaction.PublicKey.String()] = envelope.Transaction.Nonce

	txHash, err := envelope.Transaction.Hash()
	require.NoError(n.t, err)
	n.reply(w, fmt.Sprintf(
		`{"status":{"SuccessValue":""},"transaction_outcome":{"id":%q,"outcome":{"logs":[],"receipt_ids":[],"gas_burnt":1,"tokens_burnt":"0","executor_id":"x","status":{"SuccessValue":""}}},"receipts_outcome":[]}`,
		txHash))
}

func (n *fakeNode) reply(w http.ResponseWriter, result string) {
	_, err := fmt.Fprintf(w, `{"jsonrpc":"2.0","id":"x","result":%s}`, result)
	require.NoError(n.t, err)
}

func (n *fakeNode) replyError(w http.ResponseWriter, cause, info string) {
	_, err := fmt.Fprintf(w,
		`{"jsonrpc":"2.0","id":"x","error":{"name":"HANDLER_ERROR","cause":{"name":%q,"info":%s},"code":-32000,"message":"rejected"}}`,
		cause, info)
	require.NoError(n.t, err)
}

func (n *fakeNode) nonceFor(pub keys.PublicKey) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chainNonces[pub.String()]
}

func (n *fakeNode) submittedNonces() []uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	nonces := make([]uint64, len(n.submissions))
	for i, s := range n.submissions {
		nonces[i] = s.Transaction.Nonce
	}
	return nonces
}

func testClient(t *testing.T, node *fakeNode) *Client {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	cfg := config.NetworkConfig{
		Name: "sandbox",
		Endpoints: []config.RPCEndpoint{{
			URL:        srv.URL,
			NumRetries: 1,
			BackoffMin: time.Millisecond,
			BackoffMax: 2 * time.Millisecond,
		}},
		LinkdropAccountID: "sandbox",
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func newTestSigner(t *testing.T) *signer.SecretKeySigner {
	t.Helper()
	key, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)
	return signer.NewSecretKeySigner(key)
}

func transferTx(t *testing.T) transaction.PrepopulatedTransaction {
	t.Helper()
	tx, err := transaction.NewBuilder("alice.sandbox", "bob.sandbox").
		Transfer(types.NEAR(1)).
		Build()
	require.NoError(t, err)
	return tx
}

func TestSignAndSendPipeline(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)
	pub, err := s.PublicKey()
	require.NoError(t, err)

	node.chainNonces[pub.String()] = 10

	outcome, err := c.SignAndSend(context.Background(), transferTx(t), s)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, pub, outcome.PublicKey)

	require.Len(t, node.submissions, 1)
	sent := node.submissions[0]
	assert.Equal(t, types.AccountID("alice.sandbox"), sent.Transaction.SignerID)
	assert.Equal(t, types.AccountID("bob.sandbox"), sent.Transaction.ReceiverID)
	assert.Equal(t, uint64(11), sent.Transaction.Nonce)
	assert.Equal(t, pub, sent.Transaction.PublicKey)
	assert.Equal(t, types.HashBytes([]byte("recent block")), sent.Transaction.BlockHash)

	// the broadcast signature verifies against the broadcast payload
	recheck := transaction.NewSignedTransaction(sent.Transaction, sent.Signature)
	ok, err := recheck.Verify()
	require.NoError(t, err)
	assert.True(t, ok)

	hash, err := sent.Transaction.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, outcome.TransactionHash)
}

func TestNonceCachedAcrossSubmissions(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)

	for i := 0; i < 3; i++ {
		_, err := c.SignAndSend(context.Background(), transferTx(t), s)
		require.NoError(t, err)
	}

	assert.Equal(t, []uint64{1, 2, 3}, node.submittedNonces())
	assert.Equal(t, 1, node.accessKeyQueries, "nonce fetched once, then cached")
}

func TestConcurrentSubmissionsGetDistinctNonces(t *testing.T) {
	const n = 8
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)

	txs := make([]transaction.PrepopulatedTransaction, n)
	for i := range txs {
		txs[i] = transferTx(t)
	}
	outcomes, err := c.SendAll(context.Background(), txs, s)
	require.NoError(t, err)
	require.Len(t, outcomes, n)

	seen := make(map[uint64]bool)
	for _, nonce := range node.submittedNonces() {
		assert.False(t, seen[nonce], "nonce %d reused", nonce)
		seen[nonce] = true
	}
	assert.Len(t, seen, n)
}

func TestSendAllWithPoolRotatesIdentities(t *testing.T) {
	const identities = 2
	const n = 4
	node := newFakeNode(t)
	c := testClient(t, node)

	pool, err := signer.NewPool(newTestSigner(t), newTestSigner(t))
	require.NoError(t, err)

	txs := make([]transaction.PrepopulatedTransaction, n)
	for i := range txs {
		txs[i] = transferTx(t)
	}
	outcomes, err := c.SendAll(context.Background(), txs, pool)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, o := range outcomes {
		counts[o.PublicKey.String()]++
	}
	require.Len(t, counts, identities)
	for pub, count := range counts {
		assert.Equal(t, n/identities, count, "key %s", pub)
	}
}

func TestCreateAccountValidationRunsBeforeNetwork(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)

	tx, err := transaction.NewBuilder("alice.sandbox", "bob.somewhere-else").
		CreateAccount().
		Transfer(types.NEAR(1)).
		Build()
	require.NoError(t, err)

	_, err = c.SignAndSend(context.Background(), tx, s)
	require.Error(t, err)
	assert.True(t, types.IsValidationError(err))
	assert.Empty(t, node.submissions)
	assert.Equal(t, 0, node.blockQueries, "rejected before any network traffic")
}

func TestInvalidNonceRetriesOnce(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)
	pub, err := s.PublicKey()
	require.NoError(t, err)

	node.chainNonces[pub.String()] = 50
	node.rejectNonces = 1

	outcome, err := c.SignAndSend(context.Background(), transferTx(t), s)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, outcome.Status)

	assert.Equal(t, []uint64{51}, node.submittedNonces())
	assert.Equal(t, 2, node.accessKeyQueries, "rejection invalidates the cache")
}

func TestInvalidNoncePersistentRejection(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)

	node.rejectNonces = 10

	_, err := c.SignAndSend(context.Background(), transferTx(t), s)
	require.Error(t, err, "one refresh attempt only, then the rejection surfaces")
	assert.Empty(t, node.submissions)
	assert.Equal(t, 2, node.accessKeyQueries)
}

func TestCreateSubAccount(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)

	newKey, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)

	outcome, err := c.CreateSubAccount(context.Background(),
		"alice.sandbox", "sub.alice.sandbox", types.NEAR(1), newKey.PublicKey(), s)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, outcome.Status)

	require.Len(t, node.submissions, 1)
	actions := node.submissions[0].Transaction.Actions
	require.Len(t, actions, 3)
	assert.True(t, actions[0].IsCreateAccount())
	assert.Equal(t, newKey.PublicKey(), actions[2].AddKey.PublicKey)
}

func TestCreateTopLevelAccountGoesThroughLinkdrop(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)

	newKey, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)

	_, err = c.CreateTopLevelAccount(context.Background(),
		"alice.sandbox", "brandnew", types.NEAR(1), newKey.PublicKey(), s)
	require.NoError(t, err)

	require.Len(t, node.submissions, 1)
	sent := node.submissions[0].Transaction
	assert.Equal(t, c.NetworkConfig().LinkdropAccountID, sent.ReceiverID)
	require.Len(t, sent.Actions, 1)
	call := sent.Actions[0].FunctionCall
	assert.Equal(t, "create_account", call.MethodName)
	assert.Contains(t, string(call.Args), `"brandnew"`)
	assert.Contains(t, string(call.Args), newKey.PublicKey().String())
}

func TestCreateTopLevelAccountRequiresLinkdrop(t *testing.T) {
	node := newFakeNode(t)
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	cfg := config.FromURL("private", srv.URL)
	c, err := New(cfg)
	require.NoError(t, err)

	newKey, err := keys.GenerateSecretKey(keys.KeyTypeED25519)
	require.NoError(t, err)
	_, err = c.CreateTopLevelAccount(context.Background(),
		"alice", "brandnew", types.NEAR(1), newKey.PublicKey(), newTestSigner(t))
	assert.True(t, types.IsValidationError(err))
}

func TestBalance(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)

	balance, err := c.Balance(context.Background(), "alice.sandbox")
	require.NoError(t, err)
	assert.Zero(t, types.NEAR(2).Cmp(balance))
}

func TestSignDelegate(t *testing.T) {
	node := newFakeNode(t)
	c := testClient(t, node)
	s := newTestSigner(t)
	pub, err := s.PublicKey()
	require.NoError(t, err)

	node.chainNonces[pub.String()] = 5

	signed, err := c.SignDelegate(context.Background(), transferTx(t), s, 1000)
	require.NoError(t, err)

	assert.Equal(t, types.AccountID("alice.sandbox"), signed.DelegateAction.SenderID)
	assert.Equal(t, uint64(6), signed.DelegateAction.Nonce)
	assert.Equal(t, uint64(1000), signed.DelegateAction.MaxBlockHeight)
	assert.Equal(t, pub, signed.DelegateAction.PublicKey)

	ok, err := signed.Verify()
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, node.submissions, "delegate signing broadcasts nothing")
}
