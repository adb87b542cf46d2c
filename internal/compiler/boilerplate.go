package compiler

// preamble declares the tape, the zero fill routine _i, the exit routine _e
// and the entry point _s. The entry point clears the tape and points ebx back
// to its first cell. The tape size is filled in as the first argument.
const preamble = `format ELF64 executable 3
entry _s
Se equ 60
Sw equ 1
C equ %d
segment writeable
    tape rb C
segment executable
_i:
    mov byte [ebx], 0
    inc ebx
    loop _i
    ret
_e:
    mov eax, Se
    xor edi, edi
    syscall
_s:
    mov ebx, tape
    mov ecx, C
    call _i
    mov ebx, tape
`

const multiIncrement = `_u:
    inc byte [ebx]
    loop _u
    ret`

const multiDecrement = `_d:
    dec byte [ebx]
    loop _d
    ret`

const multiMoveRight = `_r:
    inc ebx
    loop _r
    ret`

const multiMoveLeft = `_l:
    dec ebx
    loop _l
    ret`

const write = `_w:
    mov eax, Sw
    mov edi, 1
    mov esi, ebx
    mov edx, 1
    syscall
    ret`

const loopExit = `_b:
    ret`

// loopHeader and loopFooter enclose the body of a loop, the loop number is
// the only argument.
const loopHeader = `_h%[1]d:
    cmp byte [ebx], 0
    je _b
    jmp _k%[1]d
_k%[1]d:
`

const loopFooter = `    cmp byte [ebx], 0
    jne _k%[1]d
    jmp _b
`
