// Package ofx reads OFX/QFX bank and credit card statements into transaction drafts.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/budget/internal/model"
)

// Draft is an uncategorized transaction read from a statement, still carrying
// the bank's identifiers for duplicate detection.
type Draft struct {
	model.Transaction
	FITID     string
	AccountID string
}

// Key identifies a draft across overlapping statements. The bank's FITID is
// unique per account; without one the visible fields are all there is.
func (d Draft) Key() string {
	if d.FITID != "" {
		return "fitid|" + d.AccountID + "|" + d.FITID
	}
	return fmt.Sprintf("%s|%d|%s|%s|%s", d.AccountID, model.ToMillis(d.Date), d.Type, d.Amount.StringFixed(2), d.Description)
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	// Match opening tags that are missing their closing bracket
	// Pattern: <TAGNAME at end of line (no > and no content after tag)
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns drafts with no category and no ID.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Draft, error) {
	// Read and preprocess the content
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	// Parse OFX response
	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []Draft
	var bankStmts, ccStmts int

	// Process bank messages
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			txns, err := p.processBankStatement(stmt)
			if err != nil {
				slog.Warn("Failed to process bank statement",
					"account", stmt.BankAcctFrom.AcctID,
					"error", err)
				continue
			}
			transactions = append(transactions, txns...)
		}
	}

	// Process credit card messages
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			txns, err := p.processCreditCardStatement(stmt)
			if err != nil {
				slog.Warn("Failed to process credit card statement",
					"account", stmt.CCAcctFrom.AcctID,
					"error", err)
				continue
			}
			transactions = append(transactions, txns...)
		}
	}

	slog.InfoContext(ctx, "Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

// processBankStatement converts OFX bank transactions to drafts.
func (p *Parser) processBankStatement(stmt *ofxgo.StatementResponse) ([]Draft, error) {
	if stmt.BankTranList == nil {
		return nil, nil
	}

	accountID := string(stmt.BankAcctFrom.AcctID)
	transactions := make([]Draft, 0, len(stmt.BankTranList.Transactions))
	for _, ofxTx := range stmt.BankTranList.Transactions {
		transactions = append(transactions, p.convertTransaction(accountID, ofxTx))
	}

	return transactions, nil
}

// processCreditCardStatement converts OFX credit card transactions to drafts.
func (p *Parser) processCreditCardStatement(stmt *ofxgo.CCStatementResponse) ([]Draft, error) {
	if stmt.BankTranList == nil {
		return nil, nil
	}

	accountID := string(stmt.CCAcctFrom.AcctID)
	transactions := make([]Draft, 0, len(stmt.BankTranList.Transactions))
	for _, ofxTx := range stmt.BankTranList.Transactions {
		transactions = append(transactions, p.convertTransaction(accountID, ofxTx))
	}

	return transactions, nil
}

// convertTransaction converts an OFX transaction into an uncategorized draft.
// OFX signs credits positive and debits negative; the sign picks the type
// and the stored amount is always the absolute value.
func (p *Parser) convertTransaction(accountID string, ofxTx ofxgo.Transaction) Draft {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)

	txnType := model.CategoryTypeExpense
	if amount.IsPositive() {
		txnType = model.CategoryTypeIncome
	}

	return Draft{
		Transaction: model.Transaction{
			Date:        ofxTx.DtPosted.Time,
			Description: p.extractMerchantName(ofxTx),
			Type:        txnType,
			Amount:      amount.Abs(),
		},
		FITID:     strings.TrimSpace(string(ofxTx.FiTID)),
		AccountID: accountID,
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	// Fall back to NAME field
	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		// Sometimes MEMO has better merchant info
		name = string(tx.Memo)
	}

	// Basic cleanup
	name = strings.TrimSpace(name)

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	// Read and preprocess the content
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	accountMap := make(map[string]bool)

	// Bank accounts
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			if stmt.BankAcctFrom.AcctID != "" {
				accountMap[string(stmt.BankAcctFrom.AcctID)] = true
			}
		}
	}

	// Credit card accounts
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			if stmt.CCAcctFrom.AcctID != "" {
				accountMap[string(stmt.CCAcctFrom.AcctID)] = true
			}
		}
	}

	// Convert to slice
	var accounts []string
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)

	return accounts, nil
}
