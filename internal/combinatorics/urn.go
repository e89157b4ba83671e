package combinatorics

import "math/big"

// ProbAllMarked returns the probability that all k elements drawn without
// replacement from an urn of n elements, m of them marked, are marked:
// C(k,m) / C(k,n).
//
// Precondition: 0 <= k < m <= n.
// Postcondition: 0 <= result <= 1.
func ProbAllMarked(k, m, n int) (*big.Rat, error) {
	const op = "ProbAllMarked"
	if k >= m || m > n {
		return nil, invalid(op, CodeAllMarkedRange)
	}
	if k < 0 {
		return nil, invalid(op, CodeNegativeK)
	}
	favourable := new(big.Int).Binomial(int64(m), int64(k))
	total := new(big.Int).Binomial(int64(n), int64(k))
	return new(big.Rat).SetFrac(favourable, total), nil
}

// ProbRMarked returns the probability that exactly r of k elements drawn
// without replacement from an urn of n elements, m of them marked, are
// marked: C(r,m) * C(k-r,n-m) / C(k,n).
//
// Precondition: k <= m, k-r <= n-m, m <= n, 0 <= r <= k.
// Postcondition: 0 <= result <= 1.
func ProbRMarked(r, k, m, n int) (*big.Rat, error) {
	const op = "ProbRMarked"
	if k > m || k-r > n-m || m > n {
		return nil, invalid(op, CodeRMarkedRange)
	}
	if r < 0 || r > k {
		return nil, invalid(op, CodeDrawRange)
	}
	marked := new(big.Int).Binomial(int64(m), int64(r))
	unmarked := new(big.Int).Binomial(int64(n-m), int64(k-r))
	total := new(big.Int).Binomial(int64(n), int64(k))
	return new(big.Rat).SetFrac(marked.Mul(marked, unmarked), total), nil
}
