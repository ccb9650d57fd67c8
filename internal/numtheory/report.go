package numtheory

// Report is the classification of one positive integer.
type Report struct {
	N              int64          `json:"n" yaml:"n"`
	Basic          Basic          `json:"basic" yaml:"basic"`
	Identity       Identity       `json:"identity" yaml:"identity"`
	Classification Classification `json:"classification" yaml:"classification"`
}

// Basic holds divisors, primality and nearest neighbors.
// A nil neighbor means none was found within the search limit.
type Basic struct {
	Divisors       []int64 `json:"divisors" yaml:"divisors"`
	SumDivisors    int64   `json:"sumDivisors" yaml:"sum_divisors"`
	IsPrime        bool    `json:"isPrime" yaml:"is_prime"`
	PrevPrime      *int64  `json:"prevPrime" yaml:"prev_prime"`
	NextPrime      *int64  `json:"nextPrime" yaml:"next_prime"`
	PrevTriangular *int64  `json:"prevTriangular" yaml:"prev_triangular"`
	NextTriangular *int64  `json:"nextTriangular" yaml:"next_triangular"`
	PrevFibonacci  *int64  `json:"prevFibonacci" yaml:"prev_fibonacci"`
	NextFibonacci  *int64  `json:"nextFibonacci" yaml:"next_fibonacci"`
	PrevPalindrome *int64  `json:"prevPalindrome" yaml:"prev_palindrome"`
	NextPalindrome *int64  `json:"nextPalindrome" yaml:"next_palindrome"`
}

// Identity holds the digital root and positional representations.
type Identity struct {
	DigitalRoot     int    `json:"digitalRoot" yaml:"digital_root"`
	ReducedSum      int    `json:"reducedSum" yaml:"reduced_sum"`
	Binary          string `json:"binary" yaml:"binary"`
	Octal           string `json:"octal" yaml:"octal"`
	Decimal         string `json:"decimal" yaml:"decimal"`
	Duodecimal      string `json:"duodecimal" yaml:"duodecimal"`
	Hex             string `json:"hex" yaml:"hex"`
	IsMagicConstant bool   `json:"isMagicConstant" yaml:"is_magic_constant"`
}

// Classification holds figurate and digit-based properties.
type Classification struct {
	PrimeIndex      *int64 `json:"primeIndex" yaml:"prime_index"`
	IsTriangular    bool   `json:"isTriangular" yaml:"is_triangular"`
	TriangularIndex *int64 `json:"triangularIndex" yaml:"triangular_index"`
	IsSquare        bool   `json:"isSquare" yaml:"is_square"`
	IsCube          bool   `json:"isCube" yaml:"is_cube"`
	IsFibonacci     bool   `json:"isFibonacci" yaml:"is_fibonacci"`
	FibonacciIndex  *int64 `json:"fibonacciIndex" yaml:"fibonacci_index"`
	IsHarshad       bool   `json:"isHarshad" yaml:"is_harshad"`
	IsHappy         bool   `json:"isHappy" yaml:"is_happy"`
	IsPentagonal    bool   `json:"isPentagonal" yaml:"is_pentagonal"`
	IsTetrahedral   bool   `json:"isTetrahedral" yaml:"is_tetrahedral"`
}
