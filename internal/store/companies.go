package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Zachdehooge/riskmap-dashboard/internal/model"
)

const companyColumns = `company, industry, sub_industry, credit_rating, pd, lgd, expected_loss,
	current_ratio, roa, roe, leverage_ratio, credit_var, loan_amount, fcr, rating_change_prob, created_at`

// CompanyFilter narrows Companies. Empty fields match everything.
type CompanyFilter struct {
	Search     string
	Industries []string
	Risk       model.RiskLevel
}

// CountCompanies returns the number of rows in the company table.
func (s *Store) CountCompanies(ctx context.Context) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

// InsertCompanies writes profiles in one transaction, replacing rows with
// the same company name.
func (s *Store) InsertCompanies(ctx context.Context, profiles []model.CreditProfile) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	q := s.rebind(`INSERT INTO companies (` + companyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (company) DO UPDATE SET
			industry = excluded.industry, sub_industry = excluded.sub_industry,
			credit_rating = excluded.credit_rating, pd = excluded.pd, lgd = excluded.lgd,
			expected_loss = excluded.expected_loss, current_ratio = excluded.current_ratio,
			roa = excluded.roa, roe = excluded.roe, leverage_ratio = excluded.leverage_ratio,
			credit_var = excluded.credit_var, loan_amount = excluded.loan_amount,
			fcr = excluded.fcr, rating_change_prob = excluded.rating_change_prob`)
	for _, p := range profiles {
		if _, err := tx.ExecContext(ctx, q,
			p.Company, p.Industry, p.SubIndustry, p.CreditRating, p.PD, p.LGD, p.ExpectedLoss,
			p.CurrentRatio, p.ROA, p.ROE, p.LeverageRatio, p.CreditVaR, p.LoanAmount, p.FCR,
			p.RatingChangeProb, formatTime(p.CreatedAt)); err != nil {
			return fmt.Errorf("insert company %s: %w", p.Company, err)
		}
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(sc scanner) (model.CreditProfile, error) {
	var p model.CreditProfile
	var created string
	err := sc.Scan(&p.Company, &p.Industry, &p.SubIndustry, &p.CreditRating, &p.PD, &p.LGD,
		&p.ExpectedLoss, &p.CurrentRatio, &p.ROA, &p.ROE, &p.LeverageRatio, &p.CreditVaR,
		&p.LoanAmount, &p.FCR, &p.RatingChangeProb, &created)
	p.CreatedAt = parseTime(created)
	return p, err
}

// Companies lists the profiles matching f, ordered by name. Risk is applied
// after the query because it is derived from PD.
func (s *Store) Companies(ctx context.Context, f CompanyFilter) ([]model.CreditProfile, error) {
	var where []string
	var args []any
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, `(LOWER(company) LIKE ? OR LOWER(industry) LIKE ? OR LOWER(sub_industry) LIKE ?)`)
		args = append(args, like, like, like)
	}
	if len(f.Industries) > 0 {
		ph := make([]string, len(f.Industries))
		for i, ind := range f.Industries {
			ph[i] = "LOWER(?)"
			args = append(args, ind)
		}
		where = append(where, `LOWER(industry) IN (`+strings.Join(ph, ", ")+`)`)
	}
	q := `SELECT ` + companyColumns + ` FROM companies`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY company`

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select companies: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []model.CreditProfile
	for rows.Next() {
		p, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		if f.Risk != "" && p.RiskLevel() != f.Risk {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Company returns one profile by exact name.
func (s *Store) Company(ctx context.Context, name string) (model.CreditProfile, error) {
	p, err := scanCompany(s.queryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE company = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("select company: %w", err)
	}
	return p, nil
}

// IndustryAverages returns the mean of every metric per industry.
func (s *Store) IndustryAverages(ctx context.Context, industry string) (map[string]float64, error) {
	row := s.queryRow(ctx, `SELECT COUNT(*), COALESCE(AVG(pd), 0), COALESCE(AVG(lgd), 0),
		COALESCE(AVG(current_ratio), 0), COALESCE(AVG(roe), 0), COALESCE(AVG(leverage_ratio), 0),
		COALESCE(AVG(fcr), 0) FROM companies WHERE industry = ?`, industry)
	var n int
	var pd, lgd, cr, roe, lev, fcr float64
	if err := row.Scan(&n, &pd, &lgd, &cr, &roe, &lev, &fcr); err != nil {
		return nil, fmt.Errorf("industry averages: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return map[string]float64{
		"pd": pd, "lgd": lgd, "current_ratio": cr, "roe": roe, "leverage_ratio": lev, "fcr": fcr,
	}, nil
}
