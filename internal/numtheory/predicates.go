package numtheory

import (
	"math"
	"math/big"
	"sort"
	"strconv"
)

func isPrime(n int64) bool {
	if n <= 1 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 {
		return false
	}
	for i := int64(3); i*i <= n; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// divisors collects paired divisors up to sqrt(n), ascending.
func divisors(n int64) []int64 {
	var out []int64
	for i := int64(1); i*i <= n; i++ {
		if n%i == 0 {
			out = append(out, i)
			if j := n / i; j != i {
				out = append(out, j)
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int64) int64 {
	r := int64(math.Sqrt(float64(n)))
	for r > 0 && r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

func isSquare(n int64) bool {
	if n < 0 {
		return false
	}
	r := isqrt(n)
	return r*r == n
}

// icbrt returns floor(cbrt(n)) for n >= 0.
func icbrt(n int64) int64 {
	r := int64(math.Cbrt(float64(n)))
	for r > 0 && r*r*r > n {
		r--
	}
	for (r+1)*(r+1)*(r+1) <= n {
		r++
	}
	return r
}

func isCube(n int64) bool {
	r := icbrt(n)
	return r*r*r == n
}

func isTriangular(n int64) bool {
	return isSquare(8*n + 1)
}

func triangularIndex(n int64) int64 {
	return (isqrt(8*n+1) - 1) / 2
}

func isBigSquare(x *big.Int) bool {
	if x.Sign() < 0 {
		return false
	}
	r := new(big.Int).Sqrt(x)
	return r.Mul(r, r).Cmp(x) == 0
}

// isFibonacci tests whether 5n²+4 or 5n²-4 is a perfect square.
func isFibonacci(n int64) bool {
	five := new(big.Int).Mul(big.NewInt(n), big.NewInt(n))
	five.Mul(five, big.NewInt(5))
	plus := new(big.Int).Add(five, big.NewInt(4))
	minus := new(big.Int).Sub(five, big.NewInt(4))
	return isBigSquare(plus) || isBigSquare(minus)
}

// fibonacciIndex walks the sequence 1, 1, 2, 3, ... from the start and
// returns the first 1-based position holding n.
func fibonacciIndex(n int64) (int64, bool) {
	a, b, idx := int64(0), int64(1), int64(1)
	for b <= n {
		if b == n {
			return idx, true
		}
		a, b = b, a+b
		idx++
	}
	return 0, false
}

func isPentagonal(n int64) bool {
	d := 1 + 24*n
	if !isSquare(d) {
		return false
	}
	return (1+isqrt(d))%6 == 0
}

func isTetrahedral(n int64) bool {
	for k := int64(1); ; k++ {
		t := k * (k + 1) * (k + 2) / 6
		if t == n {
			return true
		}
		if t > n {
			return false
		}
	}
}

func isPalindrome(n int64) bool {
	s := strconv.FormatInt(n, 10)
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return false
		}
	}
	return true
}

func digitSum(n int64) int64 {
	var sum int64
	for n > 0 {
		sum += n % 10
		n /= 10
	}
	return sum
}

func isHarshad(n int64) bool {
	s := digitSum(n)
	return s != 0 && n%s == 0
}

// isHappy iterates the sum of squared digits until it reaches 1 or repeats.
func isHappy(n int64) bool {
	seen := make(map[int64]struct{})
	for n != 1 {
		if _, ok := seen[n]; ok {
			return false
		}
		seen[n] = struct{}{}
		var next int64
		for m := n; m > 0; m /= 10 {
			d := m % 10
			next += d * d
		}
		n = next
	}
	return true
}

// digitalRoot is 1 + (n-1) mod 9 with no master-number exception.
func digitalRoot(n int64) int {
	return int(1 + (n-1)%9)
}

func isMagicConstant(n int64) bool {
	for order := int64(MagicOrderMin); order <= MagicOrderMax; order++ {
		if n == order*(order*order+1)/2 {
			return true
		}
	}
	return false
}

// sieveSegment is the window primeCount sieves at a time.
const sieveSegment = 1 << 16

// primeCount returns the number of primes <= n. It sieves one window at a
// time against the primes up to sqrt(n), so memory stays O(sqrt(n)).
func primeCount(n int64) int64 {
	if n < 2 {
		return 0
	}
	root := isqrt(n)

	small := make([]bool, root+1)
	var base []int64
	for i := int64(2); i <= root; i++ {
		if small[i] {
			continue
		}
		base = append(base, i)
		for j := i * i; j <= root; j += i {
			small[j] = true
		}
	}

	var count int64
	composite := make([]bool, sieveSegment)
	for lo := int64(2); lo <= n; lo += sieveSegment {
		hi := min(lo+sieveSegment-1, n)
		clear(composite)
		for _, p := range base {
			if p*p > hi {
				break
			}
			for j := max(p*p, (lo+p-1)/p*p); j <= hi; j += p {
				composite[j-lo] = true
			}
		}
		for _, c := range composite[:hi-lo+1] {
			if !c {
				count++
			}
		}
	}
	return count
}
