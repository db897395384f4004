package rtc

// Device-source support text prepended to every generated kernel. These
// mirror the device headers shipped with the precompiled kernels; the
// generated entry points only rely on scalar_type, real_type_t, the
// CallbackType enum, and the load_cb/store_cb helpers.

const complexHeader = `// complex arithmetic for generated kernels
template <typename T>
struct rocfft_complex
{
    T x;
    T y;
};

template <typename T>
__device__ rocfft_complex<T> operator+(const rocfft_complex<T>& a, const rocfft_complex<T>& b)
{
    return rocfft_complex<T>{a.x + b.x, a.y + b.y};
}

template <typename T>
__device__ rocfft_complex<T> operator-(const rocfft_complex<T>& a, const rocfft_complex<T>& b)
{
    return rocfft_complex<T>{a.x - b.x, a.y - b.y};
}

template <typename T, typename S>
__device__ rocfft_complex<T> operator*(const S& s, const rocfft_complex<T>& a)
{
    return rocfft_complex<T>{static_cast<T>(s * a.x), static_cast<T>(s * a.y)};
}

template <typename T>
struct real_type;

template <typename T>
struct real_type<rocfft_complex<T>>
{
    typedef T type;
};

template <typename T>
using real_type_t = typename real_type<T>::type;
`

const commonHeader = `
typedef unsigned int uint32_t;
typedef unsigned long long uint64_t;
`

// largeTwiddleHeader provides the table-composed twiddle multiply used
// by transpose kernels fused with a large-1D twiddle step. Tables are
// built in 256-entry levels; TWLstepN composes N levels.
const largeTwiddleHeader = `
template <typename T>
__device__ T TWLstep1(const T* twiddles, size_t u)
{
    size_t j = u & 255;
    return twiddles[j];
}

template <typename T>
__device__ T TWLstep2(const T* twiddles, size_t u)
{
    size_t j      = u & 255;
    T      result = twiddles[j];
    u >>= 8;
    j      = u & 255;
    result = T{result.x * twiddles[256 + j].x - result.y * twiddles[256 + j].y,
               result.y * twiddles[256 + j].x + result.x * twiddles[256 + j].y};
    return result;
}

template <typename T>
__device__ T TWLstep3(const T* twiddles, size_t u)
{
    size_t j      = u & 255;
    T      result = twiddles[j];
    u >>= 8;
    j      = u & 255;
    result = T{result.x * twiddles[256 + j].x - result.y * twiddles[256 + j].y,
               result.y * twiddles[256 + j].x + result.x * twiddles[256 + j].y};
    u >>= 8;
    j      = u & 255;
    result = T{result.x * twiddles[512 + j].x - result.y * twiddles[512 + j].y,
               result.y * twiddles[512 + j].x + result.x * twiddles[512 + j].y};
    return result;
}

#define TWIDDLE_STEP_MUL_FWD(TWFUNC, TWIDDLES, INDEX, REG) \
    {                                                      \
        T              W = TWFUNC(TWIDDLES, INDEX);        \
        real_type_t<T> TR, TI;                             \
        TR    = (W.x * REG.x) - (W.y * REG.y);             \
        TI    = (W.y * REG.x) + (W.x * REG.y);             \
        REG.x = TR;                                        \
        REG.y = TI;                                        \
    }

#define TWIDDLE_STEP_MUL_INV(TWFUNC, TWIDDLES, INDEX, REG) \
    {                                                      \
        T              W = TWFUNC(TWIDDLES, INDEX);        \
        real_type_t<T> TR, TI;                             \
        TR    = (W.x * REG.x) + (W.y * REG.y);             \
        TI    = -(W.y * REG.x) + (W.x * REG.y);            \
        REG.x = TR;                                        \
        REG.y = TI;                                        \
    }
`

const callbackHeader = `
enum class CallbackType
{
    NONE,
    USER_LOAD_STORE,
    USER_LOAD_STORE_R2C,
    USER_LOAD_STORE_C2R,
};
`
